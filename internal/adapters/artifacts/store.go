// Package artifacts reads compiled contract artifacts laid out the way the
// build toolchain writes them: contracts/<Source>.sol/<Name>.json.
package artifacts

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vncsmyrnk/devchain/internal/core/domain"
	"github.com/vncsmyrnk/devchain/internal/core/ports"
)

//go:embed contracts
var embedded embed.FS

type artifactFile struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     hexutil.Bytes   `json:"bytecode"`
}

type store struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[string]*domain.Artifact
}

// NewEmbeddedStore serves the artifacts of the contracts the node runs
// natively.
func NewEmbeddedStore() ports.ArtifactStore {
	return NewStore(embedded)
}

// NewDirStore reads artifacts below dir, usually ./artifacts.
func NewDirStore(dir string) ports.ArtifactStore {
	return NewStore(os.DirFS(dir))
}

func NewStore(fsys fs.FS) ports.ArtifactStore {
	return &store{
		fsys:  fsys,
		cache: make(map[string]*domain.Artifact),
	}
}

func (s *store) Artifact(name string) (*domain.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.cache[name]; ok {
		return a, nil
	}

	file, err := s.find(name)
	if err != nil {
		return nil, err
	}

	content, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", file, err)
	}

	a, err := parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", file, err)
	}
	if a.ContractName != name {
		return nil, fmt.Errorf("artifact %s declares contract %q", file, a.ContractName)
	}

	s.cache[name] = a
	return a, nil
}

func (s *store) find(name string) (string, error) {
	direct := path.Join("contracts", name+".sol", name+".json")
	if _, err := fs.Stat(s.fsys, direct); err == nil {
		return direct, nil
	}

	var found string
	err := fs.WalkDir(s.fsys, "contracts", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name+".json" {
			found = p
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to search artifacts: %w", err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, name)
	}
	return found, nil
}

func parse(content []byte) (*domain.Artifact, error) {
	var f artifactFile
	if err := json.Unmarshal(content, &f); err != nil {
		return nil, err
	}

	parsed, err := abi.JSON(bytes.NewReader(f.ABI))
	if err != nil {
		return nil, fmt.Errorf("invalid abi: %w", err)
	}

	return &domain.Artifact{
		ContractName: f.ContractName,
		SourceName:   f.SourceName,
		ABI:          parsed,
		Bytecode:     f.Bytecode,
	}, nil
}
