package toolchain

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/majorcontext/plugbuild/internal/source"
)

func TestResolve(t *testing.T) {
	pinned := source.New("", fstest.MapFS{".go-version": {Data: []byte("1.23.2\n")}})
	empty := source.New("", fstest.MapFS{})
	blank := source.New("", fstest.MapFS{".go-version": {Data: []byte("\n")}})

	tests := []struct {
		name        string
		tree        *source.Tree
		explicit    string
		wantVersion string
		wantSource  Source
	}{
		{"explicit beats file", pinned, "1.20", "1.20", SourceExplicit},
		{"file beats default", pinned, "", "1.23.2", SourceFile},
		{"default", empty, "", "1.21", SourceDefault},
		{"blank pin file is absent", blank, "", "1.21", SourceDefault},
		{"nil tree", nil, "", "1.21", SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, src := Resolve(tt.tree, tt.explicit)
			assert.Equal(t, tt.wantVersion, v)
			assert.Equal(t, tt.wantSource, src)
		})
	}
}

func TestNotice(t *testing.T) {
	assert.Equal(t, "ℹ Using Go 1.23.2 from .go-version file", Notice("1.23.2", SourceFile))
	assert.Empty(t, Notice("1.20", SourceExplicit))
	assert.Empty(t, Notice("1.21", SourceDefault))
}

func TestImage(t *testing.T) {
	assert.Equal(t, "golang:1.21", Image("", "1.21"))
	assert.Equal(t, "mirror.local/golang:1.23", Image("mirror.local/golang", "1.23"))
}
