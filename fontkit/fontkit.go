// Package fontkit locates and caches the raw font files the report
// renderer embeds. Each font role has an ordered list of filesystem
// candidates; the first readable file that actually covers the role's
// scripts wins. Loading happens at most once per Provider, so renders
// after the first never touch the disk for fonts.
package fontkit

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/apex/log"
	gofont "github.com/go-text/typesetting/font"
)

// Probe runes per role. A Latin candidate must also carry Thai, since
// Thai text is drawn with the Latin face.
const (
	latinProbe = 'ก' // THAI CHARACTER KO KAI
	cjkProbe   = '中'
)

// Paths lists candidate font files per role, highest priority first.
type Paths struct {
	Latin []string
	CJK   []string
}

// Set holds the resolved raw font bytes. A nil slice means no candidate
// for that role loaded; the renderer substitutes its compiled-in face
// (Latin) or reuses the Latin bytes (CJK).
type Set struct {
	Latin []byte
	CJK   []byte
}

// Provider resolves font candidates once and serves the cached result to
// every render. Safe for concurrent use.
type Provider struct {
	paths Paths
	once  sync.Once
	set   Set
}

func New(paths Paths) *Provider {
	return &Provider{paths: paths}
}

// Load returns the resolved font set, loading candidates from disk on the
// first call only. It never fails: roles with no usable candidate come
// back nil and the caller falls back.
func (p *Provider) Load() Set {
	p.once.Do(func() {
		p.set.Latin = firstUsable("latin", p.paths.Latin, latinProbe)
		p.set.CJK = firstUsable("cjk", p.paths.CJK, cjkProbe)
		if p.set.CJK == nil && p.set.Latin != nil {
			log.Warn("no cjk font candidate usable, reusing latin font bytes")
			p.set.CJK = p.set.Latin
		}
	})
	return p.set
}

// firstUsable walks the candidate list and returns the bytes of the first
// file that exists, parses as TrueType/OpenType, and maps the probe rune.
// If every candidate misses the probe, the first parseable one is used
// anyway so the pipeline keeps going with degraded coverage.
func firstUsable(role string, candidates []string, probe rune) []byte {
	var parseable []byte
	for _, path := range candidates {
		data, err := loadCandidate(path, probe)
		if err != nil {
			if !os.IsNotExist(err) {
				log.WithField("role", role).Warnf("font candidate %s skipped: %v", path, err)
			}
			if data != nil && parseable == nil {
				parseable = data
			}
			continue
		}
		log.WithField("role", role).Infof("font loaded from %s (%d bytes)", path, len(data))
		return data
	}
	if parseable != nil {
		log.WithField("role", role).Warn("no candidate covers the probe rune, using first parseable font")
	}
	return parseable
}

// loadCandidate reads and probes one candidate. On a coverage miss it
// returns the parsed bytes alongside the error so the caller can keep
// them as a last resort.
func loadCandidate(path string, probe rune) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if gid, ok := face.NominalGlyph(probe); !ok || gid == 0 {
		return data, fmt.Errorf("no glyph for %q", probe)
	}
	return data, nil
}
