package build

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/fjord-labs/materialize/lib/stringutil"
)

const (
	stagingInfix = "__stg"
	// TemporaryTableTTL bounds how long an orphaned staging object survives a
	// crashed run before the sweeper removes it.
	TemporaryTableTTL = 6 * time.Hour
)

// StagingName returns a session-unique name for the staging view. The trailing
// unix timestamp is the expiry consumed by [ShouldSweepFromName].
func StagingName(table string) string {
	return fmt.Sprintf("%s%s_%s_%d", table, stagingInfix, stringutil.Random(5), time.Now().Add(TemporaryTableTTL).Unix())
}

// ShouldSweepFromName reports whether a leftover staging object has expired.
func ShouldSweepFromName(name string) bool {
	if !strings.Contains(name, stagingInfix+"_") {
		return false
	}

	nameParts := strings.Split(name, "_")
	unixString := nameParts[len(nameParts)-1]
	unix, err := strconv.Atoi(unixString)
	if err != nil {
		slog.Error("Failed to parse unix string", slog.Any("err", err), slog.String("tableName", name), slog.String("unixString", unixString))
		return false
	}

	return time.Now().UTC().After(time.Unix(int64(unix), 0))
}
