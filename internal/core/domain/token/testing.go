package token

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type FakeRepository struct {
	Tokens             map[Value]Token
	CreateReturnsError bool
	ReturnError        bool
	lock               sync.Mutex
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{Tokens: make(map[Value]Token)}
}

func (r *FakeRepository) Create(ctx context.Context, input CreateInput) (t Token, err error) {
	if r.CreateReturnsError {
		return t, fmt.Errorf("%w: fake error", ErrStorageUnavailable)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.Tokens[input.Value]; ok {
		return t, ErrTokenAlreadyExists
	}
	t = New(input.Value, input.UserID, input.Purpose, input.CreatedAt)
	r.Tokens[input.Value] = t
	return t, nil
}

func (r *FakeRepository) GetByValue(ctx context.Context, value Value) (t Token, err error) {
	if r.ReturnError {
		return t, fmt.Errorf("%w: fake error", ErrStorageUnavailable)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	t, ok := r.Tokens[value]
	if !ok {
		return t, ErrTokenDoesNotExist
	}
	return t, nil
}

func (r *FakeRepository) Consume(
	ctx context.Context,
	value Value,
	purpose Purpose,
	now time.Time,
) (t Token, err error) {
	if r.ReturnError {
		return t, fmt.Errorf("%w: fake error", ErrStorageUnavailable)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	t, ok := r.Tokens[value]
	if !ok {
		return Token{}, ErrTokenDoesNotExist
	}
	if t.IsExpired(now) {
		delete(r.Tokens, value)
		return Token{}, ErrTokenExpired
	}
	if t.Purpose != purpose {
		return Token{}, ErrTokenPurposeMismatch
	}
	delete(r.Tokens, value)
	return t, nil
}

func (r *FakeRepository) DeleteExpired(ctx context.Context, now time.Time) (count int64, err error) {
	if r.ReturnError {
		return 0, fmt.Errorf("%w: fake error", ErrStorageUnavailable)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for value, t := range r.Tokens {
		if t.IsExpired(now) {
			delete(r.Tokens, value)
			count++
		}
	}
	return count, nil
}

func (r *FakeRepository) TokenCount() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.Tokens)
}

type FakeValueGenerator struct {
	Value Value
}

func NewFakeValueGenerator(value string) *FakeValueGenerator {
	return &FakeValueGenerator{Value: Value(value)}
}

func (g *FakeValueGenerator) GenerateTokenValue() Value {
	return g.Value
}

// SequenceValueGenerator returns a fresh value on every call, for tests
// exercising the duplicate-value retry path.
type SequenceValueGenerator struct {
	Values []Value
	next   int
	lock   sync.Mutex
}

func NewSequenceValueGenerator(values ...string) *SequenceValueGenerator {
	g := &SequenceValueGenerator{}
	for _, v := range values {
		g.Values = append(g.Values, Value(v))
	}
	return g
}

func (g *SequenceValueGenerator) GenerateTokenValue() Value {
	g.lock.Lock()
	defer g.lock.Unlock()
	v := g.Values[g.next%len(g.Values)]
	g.next++
	return v
}

type FakeSender struct {
	Sent        []SendInput
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeSender() *FakeSender {
	return &FakeSender{}
}

func (s *FakeSender) SendToken(ctx context.Context, input SendInput) error {
	if s.ReturnError {
		return fmt.Errorf("could not send token to %s", input.Email)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, input)
	return nil
}

func (s *FakeSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}

func (s *FakeSender) LastSent() SendInput {
	s.lock.Lock()
	defer s.lock.Unlock()
	l := len(s.Sent)
	if l == 0 {
		panic("sent count is 0")
	}
	return s.Sent[l-1]
}
