package repoargs

import "github.com/fsdevblog/groph-bundles/internal/domain"

type FindBundle struct {
	Provider domain.Provider
	Volume   string
	Audience domain.AudienceTier
}
