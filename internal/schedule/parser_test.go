package schedule

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	allOff  = "zzzzzzzzzzzzzzzzzzzzzzzz"
	mixed   = "zvvzvmvzzzzzzzzzzzzzzzzz"
	evening = "zzzzzzzzzzzzzzzzzzzvvvvv"
)

func TestParseTable(t *testing.T) {
	raw := page(block(1, group(mixed)), block(2, group(allOff)), block(3, group(evening)))

	table, err := ParseTable(raw)
	require.NoError(t, err)
	require.Len(t, table, 3)
	assert.Equal(t, group(mixed), table[0])
	assert.Equal(t, group(allOff), table[1])
	assert.Equal(t, group(evening), table[2])
}

func TestParseTableSkipsMalformedBlocks(t *testing.T) {
	valid := block(7, group(mixed))

	short := block(1, group(mixed[:23]))
	long := block(2, group(mixed+"z"))
	badSymbol := strings.Replace(block(3, group(allOff)), "<s>з</s>", "<s>x</s>", 1)
	badTag := strings.Replace(block(4, group(allOff)), "<s>з</s>", "<b>з</b>", 1)
	badID := strings.Replace(block(5, group(allOff)), `id="inf5"`, `id="info5"`, 1)
	noDataID := strings.Replace(block(6, group(allOff)), ` data-id="6"`, "", 1)
	extraText := strings.Replace(block(8, group(allOff)), "<s>з</s>", "<s>з</s> note", 1)
	nested := strings.Replace(block(9, group(allOff)), "<s>з</s>", "<s><i>з</i></s>", 1)

	raw := page(short, long, badSymbol, badTag, badID, noDataID, valid, extraText, nested)

	table, err := ParseTable(raw)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, group(mixed), table[0])
}

func TestParseTableNoBlocks(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"error page":  "<html><body><h1>502 Bad Gateway</h1></body></html>",
		"only broken": page(block(1, group(mixed[:20]))),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			table, err := ParseTable(raw)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, errors.Is(err, ErrParse))

			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParseTableMaybeOff(t *testing.T) {
	table, err := ParseTable(page(block(1, group("mmmmmmmmmmmmzzzzzzzzzzzz"))))
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, StateMaybeOff, table[0][0])
	assert.Equal(t, StateOff, table[0][23])
	assert.NoError(t, table.Validate())
}
