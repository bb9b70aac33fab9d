package workers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/hireloop/hireloop/internal/providers/stt"
)

// TranscribeWorkerPool drains the answer-audio stream, runs speech
// recognition, and publishes transcript fragments onto the session's
// transcript channel where the websocket feed picks them up.
type TranscribeWorkerPool struct {
	Redis      *redis.Client
	STT        stt.Provider
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

// TranscriptChannel is where fragments for one session are published.
func TranscriptChannel(sessionID string) string {
	return "interview:" + sessionID + ":transcript"
}

func (p *TranscribeWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.STT == nil {
		return errors.New("TranscribeWorkerPool missing dependency: Redis/STT must be set")
	}
	if p.Stream == "" {
		p.Stream = "interview:audio"
	}
	if p.Group == "" {
		p.Group = "transcribe-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 5
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *TranscribeWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func normalizeLanguage(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "", "en", "en-US":
		return "en-US"
	default:
		return v
	}
}

func (p *TranscribeWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	sessionID := getStr("session_id")
	questionID := getStr("question_id")
	chunkIndexStr := getStr("chunk_index")
	if sessionID == "" || chunkIndexStr == "" {
		return
	}
	chunkIndex, _ := strconv.ParseInt(chunkIndexStr, 10, 64)
	isFinal := getStr("is_final") == "true"

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":    msg.ID,
		"session_id":  sessionID,
		"chunk_index": chunkIndex,
	})

	ch := TranscriptChannel(sessionID)
	language := normalizeLanguage(getStr("language"))

	// Fetch audio
	var audioBytes []byte
	if b64 := getStr("audio_base64"); b64 != "" {
		raw := b64
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:] // strip data:...;base64,
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			log.WithError(err).Warn("base64 decode failed")
			p.publish(ctx, ch, map[string]any{
				"type": "transcript_error", "chunk_index": chunkIndex, "message": "invalid audio_base64",
			})
			return
		}
		audioBytes = decoded
	} else if url := getStr("audio_url"); url != "" {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			log.WithError(err).Warn("audio_url fetch failed")
			p.publish(ctx, ch, map[string]any{
				"type": "transcript_error", "chunk_index": chunkIndex, "message": "failed to fetch audio_url",
			})
			return
		}
		defer resp.Body.Close()

		const maxBytes = 10 << 20
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
		if len(body) == 0 {
			p.publish(ctx, ch, map[string]any{
				"type": "transcript_error", "chunk_index": chunkIndex, "message": "empty audio",
			})
			return
		}
		audioBytes = body
	} else {
		return
	}

	text, conf, err := p.STT.Transcribe(ctx, audioBytes, language)
	if err != nil {
		// recognizer failures are transient for the session: the capture
		// keeps whatever it already has
		log.WithError(err).Error("stt failed")
		p.publish(ctx, ch, map[string]any{
			"type": "transcript_error", "chunk_index": chunkIndex, "message": "stt failed",
		})
		return
	}

	p.publish(ctx, ch, map[string]any{
		"type":        "transcript",
		"question_id": questionID,
		"chunk_index": chunkIndex,
		"text":        text,
		"confidence":  conf,
		"is_final":    isFinal,
	})
}

func (p *TranscribeWorkerPool) publish(ctx context.Context, channel string, payload map[string]any) {
	b, _ := json.Marshal(payload)
	_ = p.Redis.Publish(ctx, channel, string(b)).Err()
}
