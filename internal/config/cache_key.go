package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// EntityStatsKey returns the cache key for the aggregate entity stats report.
func (r *CacheKeyStruct) EntityStatsKey() string {
	return "stats:entities"
}

// TemplateMonitorChannel returns the Redis PubSub channel name for live
// session progress events on a template.
func (r *CacheKeyStruct) TemplateMonitorChannel(templateID string) string {
	return fmt.Sprintf("template:%s:monitor", templateID)
}

var CacheKey = NewCacheKeyStruct()
