package sessions

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunJanitor purges unrecoverable sessions every interval until ctx is done.
// Clients that stop ticking would otherwise leave their records behind.
func (s *TokenStore) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := s.PurgeExpired(); removed > 0 {
				log.Info().Int("removed", removed).Msg("Purged expired sessions")
			}
		}
	}
}
