package paths

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupNameRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 2, 999, time.Local)
	name := BackupName(at)
	assert.Equal(t, "backup-2024-03-09-07-05-02", name)

	parsed, ok := ParseBackupName(name)
	require.True(t, ok)
	assert.True(t, parsed.Equal(at.Truncate(time.Second)))
}

func TestParseBackupNameRejects(t *testing.T) {
	for _, name := range []string{
		"backup-manual",
		"backup-2024-13-01-00-00-00",
		"backup-2024-03-09",
		"snapshot-2024-03-09-07-05-02",
		"backup-2024-03-09-07-05-02.tmp",
	} {
		_, ok := ParseBackupName(name)
		assert.False(t, ok, name)
	}
}
