package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jaevor/go-nanoid"
)

// sequenceSource выдаёт следующее значение последовательности номеров споров.
type sequenceSource interface {
	NextSequence(ctx context.Context) (int64, error)
}

// DisputeNumberGenerator генерирует номера споров в формате
// DSP-<unix millis>-<номер>. Основной путь использует последовательность
// базы; при её недоступности применяется случайный суффикс, чтобы создание
// спора не падало из-за вспомогательного запроса.
type DisputeNumberGenerator struct {
	seq    sequenceSource
	random func() string
	now    func() time.Time
}

// NewDisputeNumberGenerator создаёт генератор с запасным путём на nanoid.
func NewDisputeNumberGenerator(seq sequenceSource) *DisputeNumberGenerator {
	random, err := nanoid.CustomASCII("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", 6)
	if err != nil {
		// Алфавит и длина фиксированы, ошибка возможна только при их порче.
		panic(err)
	}
	return &DisputeNumberGenerator{
		seq:    seq,
		random: random,
		now:    time.Now,
	}
}

// Next возвращает следующий номер спора.
func (g *DisputeNumberGenerator) Next(ctx context.Context) string {
	millis := g.now().UnixMilli()
	seq, err := g.seq.NextSequence(ctx)
	if err != nil {
		return fmt.Sprintf("DSP-%d-%s", millis, g.random())
	}
	return fmt.Sprintf("DSP-%d-%06d", millis, seq%1000000)
}
