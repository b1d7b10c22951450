package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ChapterPolicyKey returns the cache key for a chapter's resolved policy.
func (r *CacheKeyStruct) ChapterPolicyKey(chapterID uuid.UUID) string {
	return fmt.Sprintf("chapter:%s:policy", chapterID)
}

var CacheKey = NewCacheKeyStruct()
