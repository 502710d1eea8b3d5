package dispatch

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Intensity selects the speaking rate.
type Intensity string

// Intensities.
const (
	IntensityNormal Intensity = "normal"
	IntensityUrgent Intensity = "urgent"
)

// Speaker says text out loud without blocking the caller.
type Speaker interface {
	Speak(text string, intensity Intensity)
}

// SaySpeaker queues utterances for a single background goroutine that runs
// the speak command (macOS `say` by default). Utterances arriving while the
// queue is full are dropped. Close stops the goroutine.
type SaySpeaker struct {
	command string
	voice   string
	rate    int
	timeout time.Duration
	runner  CommandRunner
	logger  *zap.Logger

	queue chan utterance
	done  chan struct{}
	once  sync.Once
}

type utterance struct {
	text      string
	intensity Intensity
}

// NewSaySpeaker starts a speaker. rate is words per minute for normal
// intensity; urgent speech is 15% faster.
func NewSaySpeaker(command, voice string, rate int, runner CommandRunner, logger *zap.Logger) *SaySpeaker {
	if command == "" {
		command = "say"
	}
	if rate <= 0 {
		rate = 175
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SaySpeaker{
		command: command,
		voice:   voice,
		rate:    rate,
		timeout: 30 * time.Second,
		runner:  runner,
		logger:  logger,
		queue:   make(chan utterance, 8),
		done:    make(chan struct{}),
	}
	go s.loop()
	return s
}

// Speak implements Speaker.
func (s *SaySpeaker) Speak(text string, intensity Intensity) {
	select {
	case s.queue <- utterance{text: oneLine(text), intensity: intensity}:
	default:
		s.logger.Warn("speech queue full, dropping utterance")
	}
}

// Args returns the command arguments for one utterance.
func (s *SaySpeaker) Args(text string, intensity Intensity) []string {
	rate := s.rate
	if intensity == IntensityUrgent {
		rate = rate * 115 / 100
	}
	var args []string
	if s.voice != "" {
		args = append(args, "-v", s.voice)
	}
	return append(args, "-r", strconv.Itoa(rate), "--", text)
}

func (s *SaySpeaker) loop() {
	defer close(s.done)
	for u := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if _, err := s.runner.Run(ctx, s.command, s.Args(u.text, u.intensity)...); err != nil {
			s.logger.Warn("speak failed", zap.String("command", s.command), zap.Error(err))
		}
		cancel()
	}
}

// Close drains queued utterances and stops the background goroutine.
func (s *SaySpeaker) Close() {
	s.once.Do(func() { close(s.queue) })
	<-s.done
}
