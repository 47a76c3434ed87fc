package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamPDFKey returns the cache key for an exam's rendered paper
func (r *CacheKeyStruct) ExamPDFKey(examID string) string {
	return fmt.Sprintf("exam:%s:pdf", examID)
}

// ExamStaticKey returns the cache key for an exam's static HTML view
func (r *CacheKeyStruct) ExamStaticKey(examID string, showAnswers bool) string {
	if showAnswers {
		return fmt.Sprintf("exam:%s:static:answers", examID)
	}
	return fmt.Sprintf("exam:%s:static", examID)
}

// ExamEditorChannel returns the Redis PubSub channel carrying block changes
// of an exam to every open editor session
func (r *CacheKeyStruct) ExamEditorChannel(examID string) string {
	return fmt.Sprintf("exam:%s:editor", examID)
}

var CacheKey = NewCacheKeyStruct()
