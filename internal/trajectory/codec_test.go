package trajectory

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/spin.report/internal/fsutil"
	"github.com/banshee-data/spin.report/internal/testutil"
)

func TestParseLog_Fixture(t *testing.T) {
	l, err := ParseLog(strings.NewReader(testutil.BounceFixture))
	require.NoError(t, err)

	want := []Sample{
		{Frame: 1, Point: Point{X: 100, Y: 200}},
		{Frame: 2, Point: Point{X: 100, Y: 230}},
		{Frame: 3, Point: Point{X: 100, Y: 250}},
		{Frame: 4, Point: Point{X: 100, Y: 245}},
		{Frame: 5, Point: Point{X: 100, Y: 220}},
	}
	if diff := cmp.Diff(want, l.Samples()); diff != "" {
		t.Errorf("ParseLog mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLog_SkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		"1,10,20",
		"2,10",          // too few fields
		"3,10,20,30",    // too many fields
		"frame,x,y",     // not numeric
		"",              // blank
		"   ",           // whitespace only
		" 4 , 11 , 21 ", // padded
		"5,12.6,22.4",   // decimal pixels
		"",
		"",
	}, "\n")

	l, err := ParseLog(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 5}, l.Frames())

	s, ok := l.Lookup(5)
	require.True(t, ok)
	assert.Equal(t, Point{X: 12.6, Y: 22.4}, s.Point)
}

func TestParseLog_SkipsOversizedLine(t *testing.T) {
	junk := strings.Repeat("x", 70*1024)
	input := "1,100,200\n2,100,230\n" + junk + "\n3,100,250\n4,100,245\n5,100,220"

	l, err := ParseLog(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, l.Frames())
}

func TestParseLog_ReadError(t *testing.T) {
	readErr := errors.New("disk gone")
	_, err := ParseLog(io.MultiReader(strings.NewReader("1,1,1\n"), iotest.ErrReader(readErr)))
	assert.ErrorIs(t, err, readErr)
}

func TestParseLog_UnorderedInput(t *testing.T) {
	l, err := ParseLog(strings.NewReader("9,1,1\n3,2,2\n6,3,3\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 6, 9}, l.Frames())
}

func TestWriteLog_RoundsToNearest(t *testing.T) {
	l := NewLog([]Sample{
		{Frame: 2, Point: Point{X: 232.528378, Y: 215.085}},
		{Frame: 1, Point: Point{X: 99.4, Y: -0.6}},
	})
	assert.Equal(t, "1,99,-1\n2,233,215\n", FormatLog(l))
}

func TestWriteLog_HalvesRoundToEven(t *testing.T) {
	l := NewLog([]Sample{
		{Frame: 1, Point: Point{X: 0.5, Y: 1.5}},
		{Frame: 2, Point: Point{X: 2.5, Y: -2.5}},
	})
	assert.Equal(t, "1,0,2\n2,2,-2\n", FormatLog(l))
}

func TestRoundTrip(t *testing.T) {
	original := NewLog([]Sample{
		{Frame: 3, Point: Point{X: 100.2, Y: 250.7}},
		{Frame: 1, Point: Point{X: 98.9, Y: 200}},
		{Frame: 8, Point: Point{X: 101, Y: 240.49}},
	})

	first := FormatLog(original)
	reparsed, err := ParseLog(strings.NewReader(first))
	require.NoError(t, err)

	want := []Sample{
		{Frame: 1, Point: Point{X: 99, Y: 200}},
		{Frame: 3, Point: Point{X: 100, Y: 251}},
		{Frame: 8, Point: Point{X: 101, Y: 240}},
	}
	if diff := cmp.Diff(want, reparsed.Samples()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, first, FormatLog(reparsed))
}

func TestLogFile_MemoryFileSystem(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	mfs.Put("coordinates/coordinates.txt", []byte(testutil.BounceFixture))

	l, err := ReadLogFile(mfs, "coordinates/coordinates.txt")
	require.NoError(t, err)
	require.Equal(t, 5, l.Len())

	require.NoError(t, WriteLogFile(mfs, "coordinates/copy.txt", l))
	data, ok := mfs.Contents("coordinates/copy.txt")
	require.True(t, ok)
	assert.Equal(t, testutil.BounceFixture, string(data))
	assert.True(t, mfs.Exists("coordinates"))
}

func TestReadLogFile_Missing(t *testing.T) {
	_, err := ReadLogFile(fsutil.NewMemoryFileSystem(), "missing.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
