package ports

import "github.com/vncsmyrnk/devchain/internal/core/domain"

type ArtifactStore interface {
	Artifact(name string) (*domain.Artifact, error)
}
