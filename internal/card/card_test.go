package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-server/internal/randutil"
)

func TestParseAndString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "queen of hearts", input: "Qh", want: "Qh"},
		{name: "ten of spades", input: "Ts", want: "Ts"},
		{name: "ace of clubs", input: "Ac", want: "Ac"},
		{name: "deuce of diamonds", input: "2d", want: "2d"},
		{name: "bad rank", input: "Xs", wantErr: true},
		{name: "bad suit", input: "Az", wantErr: true},
		{name: "wrong length", input: "As9", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}
}

func TestEncodingFields(t *testing.T) {
	c := New(Ace, Spades)
	assert.Equal(t, Ace, c.Rank())
	assert.Equal(t, Spades, c.Suit())
	assert.Equal(t, uint32(41), c.Prime())
	assert.NotZero(t, c.RankBit())
	assert.NotZero(t, c.SuitFlag())
}

func TestEveryRankHasAUniquePrime(t *testing.T) {
	seen := make(map[uint32]bool)
	for rank := Two; rank <= Ace; rank++ {
		c := New(rank, Clubs)
		assert.False(t, seen[c.Prime()], "prime collision for rank %v", rank)
		seen[c.Prime()] = true
	}
}

func TestHiddenSentinel(t *testing.T) {
	assert.Equal(t, "??", Card(0).String())
	assert.Equal(t, Hidden, Card(0).String())
}

func TestDeckHas52DistinctCards(t *testing.T) {
	d := NewDeck()
	seen := make(map[Card]bool)
	for {
		c, ok := d.Draw()
		if !ok {
			break
		}
		assert.False(t, seen[c], "duplicate card drawn: %v", c)
		seen[c] = true
	}
	assert.Len(t, seen, 52)
}

func TestDeckShuffleIsDeterministicPerSeed(t *testing.T) {
	d1 := NewDeck()
	d1.Shuffle(randutil.New(42))

	d2 := NewDeck()
	d2.Shuffle(randutil.New(42))

	for i := 0; i < 52; i++ {
		c1, _ := d1.Draw()
		c2, _ := d2.Draw()
		assert.Equal(t, c1, c2)
	}
}

func TestDeckExhaustion(t *testing.T) {
	d := NewDeck()
	d.DrawN(52)
	_, ok := d.Draw()
	assert.False(t, ok)
	assert.Equal(t, 0, d.Remaining())
}
