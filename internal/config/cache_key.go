package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ClientSessionsKey returns the key for a client's session record.
func (r *CacheKeyStruct) ClientSessionsKey(clientID string) string {
	return fmt.Sprintf("client:%s:sessions", clientID)
}

// ClientSessionsPattern matches every client session record (janitor scan).
func (r *CacheKeyStruct) ClientSessionsPattern() string {
	return "client:*:sessions"
}

// ClientCreditsKey returns the key for a client's credit record.
func (r *CacheKeyStruct) ClientCreditsKey(clientID string) string {
	return fmt.Sprintf("client:%s:credits", clientID)
}

// ClientEventsChannel returns the pub/sub channel for a client's store events.
func (r *CacheKeyStruct) ClientEventsChannel(clientID string) string {
	return fmt.Sprintf("client:%s:events", clientID)
}

var CacheKey = NewCacheKeyStruct()
