package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		text     string
		encoding string
	}{
		{
			name:     "utf-8 with byte-order mark",
			raw:      append([]byte{0xEF, 0xBB, 0xBF}, []byte("الاسم")...),
			text:     "الاسم",
			encoding: "utf-8-sig",
		},
		{
			name:     "plain utf-8",
			raw:      []byte("NationalID,FullName"),
			text:     "NationalID,FullName",
			encoding: "utf-8",
		},
		{
			name:     "latin-1 fallback",
			raw:      []byte{'J', 'o', 's', 0xE9},
			text:     "José",
			encoding: "latin-1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, encoding, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.encoding, encoding)
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("english and arabic headings resolve the same", func(t *testing.T) {
		english, err := Parse("NationalID,FullName\n1,Sara\n2,Omar\n")
		require.NoError(t, err)
		arabic, err := Parse("رقم الهوية,الاسم\n1,Sara\n2,Omar\n")
		require.NoError(t, err)

		require.Len(t, english, 2)
		require.Len(t, arabic, 2)
		for i := range english {
			assert.Equal(t, english[i].NationalID, arabic[i].NationalID)
			assert.Equal(t, english[i].FullName, arabic[i].FullName)
		}
	})

	t.Run("first non-empty alias wins", func(t *testing.T) {
		rows, err := Parse("National ID,NationalID,Full Name,الاسم الكامل\n 7 , ,,سارة\n")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "7", rows[0].NationalID)
		assert.Equal(t, "سارة", rows[0].FullName)
	})

	t.Run("header names are trimmed and unknown columns ignored", func(t *testing.T) {
		rows, err := Parse(" nationalid , Notes , fullname \n9,ignored,Ali\n")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, Row{Line: 2, NationalID: "9", FullName: "Ali"}, rows[0])
		assert.True(t, rows[0].Complete())
	})

	t.Run("short rows resolve missing fields as empty", func(t *testing.T) {
		rows, err := Parse("NationalID,FullName\n5\n")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "5", rows[0].NationalID)
		assert.False(t, rows[0].Complete())
	})

	t.Run("empty input has no rows", func(t *testing.T) {
		rows, err := Parse("")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("stray quotes inside a cell are kept as text", func(t *testing.T) {
		rows, err := Parse("NationalID,FullName\n1,Ali \"Bob\" Sami\n2,Sara\n")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, `Ali "Bob" Sami`, rows[0].FullName)
		assert.Equal(t, "Sara", rows[1].FullName)
	})

	t.Run("blank lines around the sheet are ignored", func(t *testing.T) {
		rows, err := Parse("  \nNationalID,FullName\n3,Omar\n\n")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "3", rows[0].NationalID)
		assert.Equal(t, "Omar", rows[0].FullName)
	})

	t.Run("cell over the field limit is an error", func(t *testing.T) {
		_, err := Parse("NationalID,FullName\n1," + strings.Repeat("a", MaxFieldRunes+1) + "\n")
		assert.ErrorIs(t, err, ErrFieldTooLarge)

		rows, err := Parse("NationalID,FullName\n1," + strings.Repeat("ب", MaxFieldRunes) + "\n")
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})
}

func TestRead(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("الاسم_الكامل,رقم_الهوية\r\nسارة علي,100200300\r\n")...)
	rows, err := Read(raw)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100200300", rows[0].NationalID)
	assert.Equal(t, "سارة علي", rows[0].FullName)
}
