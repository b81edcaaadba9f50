//go:build !opus

package audio

import "github.com/foxseedlab/zumka/internal/audio"

func OpenOpusFile(_ string, _ int) (audio.Source, error) {
	return nil, audio.ErrOpusUnsupported
}
