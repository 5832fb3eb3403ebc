package dbpkg

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRecordFields(t *testing.T) {
	t.Parallel()

	amount := decimal.RequireFromString("1234.50")

	w := NewRecordWriter(4 + 8 + 1 + 10 + DecimalSize + 3)
	w.Int32(-7)
	w.Int64(1 << 40)
	w.Bool(true)
	w.String("truncated-name", 10)
	w.Decimal(amount)
	w.Skip(3)

	b, err := w.Bytes()
	require.NoError(t, err)

	r := NewRecordReader(b)
	require.Equal(t, int32(-7), r.Int32())
	require.Equal(t, int64(1<<40), r.Int64())
	require.True(t, r.Bool())
	require.Equal(t, "truncated-", r.String(10))
	require.True(t, amount.Equal(r.Decimal()))
	r.Skip(3)
	require.NoError(t, r.Err())
}

func TestRecordFieldErrors(t *testing.T) {
	t.Parallel()

	w := NewRecordWriter(4)
	w.Int64(1)
	_, err := w.Bytes()
	require.Error(t, err)

	w = NewRecordWriter(DecimalSize)
	w.Decimal(decimal.RequireFromString("1" + strings.Repeat("0", DecimalSize)))
	_, err = w.Bytes()
	require.Error(t, err)

	r := NewRecordReader([]byte("not-a-number"))
	r.buf = append(r.buf, make([]byte, DecimalSize-len(r.buf))...)
	r.Decimal()
	require.Error(t, r.Err())

	r = NewRecordReader(make([]byte, DecimalSize))
	require.True(t, r.Decimal().IsZero())
	require.NoError(t, r.Err())
}

func TestStringKeepsWholeRunes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "Fits", in: "Ann", n: 5, want: "Ann"},
		{name: "ASCIICut", in: "Annabelle", n: 5, want: "Annab"},
		{name: "MultibyteCut", in: strings.Repeat("日", 4), n: 10, want: strings.Repeat("日", 3)},
		{name: "MixedCut", in: "ab日本", n: 6, want: "ab日"},
		{name: "NothingFits", in: "日", n: 2, want: ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := NewRecordWriter(tc.n)
			w.String(tc.in, tc.n)

			b, err := w.Bytes()
			require.NoError(t, err)

			got := NewRecordReader(b).String(tc.n)
			require.Equal(t, tc.want, got)
			require.True(t, utf8.ValidString(got))
		})
	}
}
