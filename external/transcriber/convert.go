package transcriber

import (
	"fmt"

	"github.com/foxseedlab/zumka/internal/transcriber"
	stt "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
)

func toProtoRequest(req transcriber.Request) (*stt.StreamingRequest, error) {
	switch r := req.(type) {
	case transcriber.SessionOptions:
		model, err := toProtoModelOptions(r.Config)
		if err != nil {
			return nil, err
		}
		return &stt.StreamingRequest{
			Event: &stt.StreamingRequest_SessionOptions{
				SessionOptions: &stt.StreamingOptions{
					RecognitionModel: model,
				},
			},
		}, nil
	case transcriber.Chunk:
		return &stt.StreamingRequest{
			Event: &stt.StreamingRequest_Chunk{
				Chunk: &stt.AudioChunk{Data: r.Data},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported request type %T", req)
	}
}

func toProtoEncoding(e transcriber.Encoding) (stt.RawAudio_AudioEncoding, error) {
	switch e {
	case transcriber.EncodingLinear16PCM:
		return stt.RawAudio_LINEAR16_PCM, nil
	default:
		return stt.RawAudio_AUDIO_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported audio encoding %s", e)
	}
}

func toProtoModelOptions(cfg transcriber.RecognitionConfig) (*stt.RecognitionModelOptions, error) {
	audio := cfg.Audio()
	norm := cfg.Normalization()

	encoding, err := toProtoEncoding(audio.Encoding)
	if err != nil {
		return nil, err
	}

	normalization := stt.TextNormalizationOptions_TEXT_NORMALIZATION_DISABLED
	if norm.Enabled {
		normalization = stt.TextNormalizationOptions_TEXT_NORMALIZATION_ENABLED
	}
	processing := stt.RecognitionModelOptions_REAL_TIME
	if cfg.Mode() == transcriber.ProcessingFullData {
		processing = stt.RecognitionModelOptions_FULL_DATA
	}

	return &stt.RecognitionModelOptions{
		AudioFormat: &stt.AudioFormatOptions{
			AudioFormat: &stt.AudioFormatOptions_RawAudio{
				RawAudio: &stt.RawAudio{
					AudioEncoding:     encoding,
					SampleRateHertz:   int64(audio.SampleRateHertz),
					AudioChannelCount: int64(audio.ChannelCount),
				},
			},
		},
		TextNormalization: &stt.TextNormalizationOptions{
			TextNormalization: normalization,
			ProfanityFilter:   norm.ProfanityFilter,
			LiteratureText:    norm.LiteratureText,
		},
		LanguageRestriction: &stt.LanguageRestrictionOptions{
			RestrictionType: stt.LanguageRestrictionOptions_WHITELIST,
			LanguageCode:    cfg.Languages(),
		},
		AudioProcessingType: processing,
	}, nil
}

func fromProtoResponse(resp *stt.StreamingResponse) transcriber.Event {
	switch e := resp.GetEvent().(type) {
	case *stt.StreamingResponse_Partial:
		return transcriber.Partial{
			Alternatives: fromProtoAlternatives(e.Partial),
			ChannelTag:   resp.GetChannelTag(),
		}
	case *stt.StreamingResponse_Final:
		return transcriber.Final{
			Alternatives: fromProtoAlternatives(e.Final),
			ChannelTag:   resp.GetChannelTag(),
		}
	case *stt.StreamingResponse_FinalRefinement:
		return transcriber.FinalRefinement{
			FinalIndex:   e.FinalRefinement.GetFinalIndex(),
			Alternatives: fromProtoAlternatives(e.FinalRefinement.GetNormalizedText()),
			ChannelTag:   resp.GetChannelTag(),
		}
	case *stt.StreamingResponse_EouUpdate:
		return transcriber.EndOfUtterance{TimeMs: e.EouUpdate.GetTimeMs()}
	case *stt.StreamingResponse_StatusCode:
		return transcriber.Other{Kind: "status_code"}
	case nil:
		return transcriber.Other{Kind: "empty"}
	default:
		return transcriber.Other{Kind: "other"}
	}
}

func fromProtoAlternatives(update *stt.AlternativeUpdate) []transcriber.Alternative {
	alts := update.GetAlternatives()
	out := make([]transcriber.Alternative, 0, len(alts))
	for _, a := range alts {
		out = append(out, transcriber.Alternative{
			Text:       a.GetText(),
			Confidence: a.GetConfidence(),
		})
	}
	return out
}
