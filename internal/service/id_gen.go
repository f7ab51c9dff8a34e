package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type IDGenerator interface {
	NewID() (string, error)
}
type RandomIDGenerator struct {
	prefix string
}

func NewRandomIDGenerator(prefix string) *RandomIDGenerator {
	return &RandomIDGenerator{prefix: prefix}
}

// NewID returns random identifier.
func (g *RandomIDGenerator) NewID() (string, error) {
	id := uuid.NewString()
	if g.prefix == "" {
		return id, nil
	}
	return g.prefix + id, nil
}

// TimeIDGenerator builds short ids from base36 unix millis and a base36 random suffix.
// Ids sort roughly by creation time.
type TimeIDGenerator struct {
	prefix string
	now    func() time.Time
}

// 36^8
var timeIDSuffixSpace = big.NewInt(2821109907456)

func NewTimeIDGenerator(prefix string, now func() time.Time) *TimeIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &TimeIDGenerator{prefix: prefix, now: now}
}

func (g *TimeIDGenerator) NewID() (string, error) {
	n, err := rand.Int(rand.Reader, timeIDSuffixSpace)
	if err != nil {
		return "", err
	}
	return g.prefix +
		strconv.FormatInt(g.now().UnixMilli(), 36) +
		strconv.FormatInt(n.Int64(), 36), nil
}
