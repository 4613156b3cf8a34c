package discount

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepo mirrors the active-only contract of the real repositories.
type mockRepo struct {
	byID map[string]Discount
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: map[string]Discount{}}
}

func (m *mockRepo) ListActive(context.Context) ([]Discount, error) {
	var out []Discount
	for _, d := range m.byID {
		if d.Active {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockRepo) GetActive(_ context.Context, id string) (*Discount, error) {
	d, ok := m.byID[id]
	if !ok || !d.Active {
		return nil, ErrNotFound
	}
	return &d, nil
}

func (m *mockRepo) Create(_ context.Context, d *Discount) error {
	for _, cur := range m.byID {
		if cur.Code == d.Code {
			return ErrCodeTaken
		}
	}
	m.byID[d.ID] = *d
	return nil
}

func (m *mockRepo) UpdateActive(_ context.Context, d *Discount) error {
	if cur, ok := m.byID[d.ID]; !ok || !cur.Active {
		return ErrNotFound
	}
	m.byID[d.ID] = *d
	return nil
}

func (m *mockRepo) DeleteActive(_ context.Context, id string) error {
	if cur, ok := m.byID[id]; !ok || !cur.Active {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestService_Create(t *testing.T) {
	svc := NewService(newMockRepo())

	d, err := svc.Create(context.Background(), Input{
		Code:  " spring20 ",
		Kind:  KindPercentage,
		Value: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	assert.Equal(t, "SPRING20", d.Code)
	assert.True(t, d.Active, "discounts are active unless stated otherwise")
	assert.NotEmpty(t, d.ID)

	_, err = svc.Create(context.Background(), Input{Code: "Spring20", Kind: KindFixed, Value: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrCodeTaken)
}

func TestValidate(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	until := from.Add(-time.Hour)

	tests := []struct {
		name  string
		in    Input
		field string
	}{
		{"missing code", Input{Kind: KindFixed, Value: decimal.NewFromInt(5)}, "code"},
		{"unknown kind", Input{Code: "X", Kind: "bogo", Value: decimal.NewFromInt(5)}, "kind"},
		{"zero percentage", Input{Code: "X", Kind: KindPercentage, Value: decimal.Zero}, "value"},
		{"percentage over 100", Input{Code: "X", Kind: KindPercentage, Value: decimal.NewFromInt(101)}, "value"},
		{"negative fixed", Input{Code: "X", Kind: KindFixed, Value: decimal.NewFromInt(-2)}, "value"},
		{"fixed rounds to zero", Input{Code: "X", Kind: KindFixed, Value: decimal.RequireFromString("0.001")}, "value"},
		{"fixed sub-cent", Input{Code: "X", Kind: KindFixed, Value: decimal.RequireFromString("0.004")}, "value"},
		{"fixed overflows column", Input{Code: "X", Kind: KindFixed, Value: decimal.RequireFromString("123456789012.5")}, "value"},
		{"fixed at column bound", Input{Code: "X", Kind: KindFixed, Value: decimal.New(1, 10)}, "value"},
		{"percentage sub-cent", Input{Code: "X", Kind: KindPercentage, Value: decimal.RequireFromString("12.505")}, "value"},
		{"inverted window", Input{Code: "X", Kind: KindFixed, Value: decimal.NewFromInt(2), ValidFrom: &from, ValidUntil: &until}, "valid_until"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(newMockRepo()).Create(context.Background(), tt.in)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	d := &Discount{Code: "FULL", Kind: KindPercentage, Value: decimal.NewFromInt(100)}
	assert.NoError(t, validate(d), "100 percent is the upper bound")

	d = &Discount{Code: "MAX", Kind: KindFixed, Value: decimal.RequireFromString("9999999999.99")}
	assert.NoError(t, validate(d))
	d = &Discount{Code: "TRAILING", Kind: KindFixed, Value: decimal.RequireFromString("2.500")}
	assert.NoError(t, validate(d), "trailing zeros fit the column")
}

func TestService_DeactivateHides(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepo())
	d, err := svc.Create(ctx, Input{Code: "WELCOME", Kind: KindFixed, Value: decimal.NewFromInt(5)})
	require.NoError(t, err)

	updated, err := svc.Patch(ctx, d.ID, Patch{Active: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Patch(ctx, d.ID, Patch{Active: ptr(true)})
	assert.ErrorIs(t, err, ErrNotFound, "inactive discounts cannot be targeted")
	assert.ErrorIs(t, svc.Delete(ctx, d.ID), ErrNotFound)
}

func TestService_UpdateReplaces(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMockRepo())
	d, err := svc.Create(ctx, Input{Code: "A", Description: "first", Kind: KindFixed, Value: decimal.NewFromInt(5)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, d.ID, Input{Code: "b", Kind: KindPercentage, Value: decimal.NewFromInt(12)})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Code)
	assert.Empty(t, updated.Description)
	assert.Equal(t, KindPercentage, updated.Kind)
	assert.True(t, updated.Active)

	_, err = svc.Patch(ctx, d.ID, Patch{Value: ptr(decimal.NewFromInt(0))})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}
