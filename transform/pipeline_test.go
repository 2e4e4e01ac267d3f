package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineAllRunsBeforeSpecific(t *testing.T) {
	p := NewPipeline()
	p.Before(EventAll, "prefix", func(s string) string { return "ALL:" + s })
	p.Before("documentFind", "suffix", func(s string) string { return s + ":FIND" })

	got := p.Apply("documentFind", "SELECT 1")
	assert.Equal(t, "ALL:SELECT 1:FIND", got)
}

func TestPipelineRemoveCallback(t *testing.T) {
	p := NewPipeline()
	p.Before("documentFind", "x", func(s string) string { return s + "-x" })
	p.Before("documentFind", "x", nil)
	assert.Equal(t, "SELECT 1", p.Apply("documentFind", "SELECT 1"))
}

func TestMetadataPreamble(t *testing.T) {
	m := NewMetadata()
	p := NewPipeline()
	p.Before(EventAll, MetadataTransformerName, m.Set("requestId", "abc"))
	got := p.Apply("documentFind", "SELECT 1")
	assert.Equal(t, "/* requestId: abc */\nSELECT 1", got)
}
