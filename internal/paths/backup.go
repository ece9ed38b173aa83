package paths

import (
	"regexp"
	"time"
)

// BackupTimeLayout is the timestamp suffix of a backup directory name.
const BackupTimeLayout = "2006-01-02-15-04-05"

var backupNamePattern = regexp.MustCompile(`^backup-(\d{4})-(\d{2})-(\d{2})-(\d{2})-(\d{2})-(\d{2})$`)

// BackupName returns the snapshot directory name for t, in local time.
func BackupName(t time.Time) string {
	return BackupPrefix + t.Local().Format(BackupTimeLayout)
}

// ParseBackupName extracts the timestamp encoded in a backup directory name.
// The bool is false when name does not follow the convention or encodes an
// impossible date.
func ParseBackupName(name string) (time.Time, bool) {
	m := backupNamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	// Separators are normalized before parsing.
	compact := m[1] + m[2] + m[3] + m[4] + m[5] + m[6]
	t, err := time.ParseInLocation("20060102150405", compact, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
