// Package constants provides shared constants used throughout the GRAO
// processing pipeline. This includes timeouts, retry schedules, file
// permissions, remote endpoints and output naming.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for a single HTTP request
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for short CLI commands
	CommandTimeout = 10 * time.Minute
)

// Retry schedule of the settlement directory lookup. The lookup is attempted
// once plus one more time after each delay, four attempts in total.
const (
	// FirstRetryDelay is the wait after the first failed attempt
	FirstRetryDelay = 10 * time.Second

	// SecondRetryDelay is the wait after the second failed attempt
	SecondRetryDelay = 15 * time.Second

	// ThirdRetryDelay is the wait after the third failed attempt
	ThirdRetryDelay = 20 * time.Second
)

// DirectoryRetrySchedule returns the waits between directory lookup attempts.
func DirectoryRetrySchedule() []time.Duration {
	return []time.Duration{FirstRetryDelay, SecondRetryDelay, ThirdRetryDelay}
}

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Rate limiting constants
const (
	// DirectoryRateLimit is the default number of directory requests per second
	DirectoryRateLimit = 2.0

	// DirectoryBurst is the token bucket burst size for directory requests
	DirectoryBurst = 1
)

// Remote endpoints and request defaults
const (
	// DirectoryURL is the NSI settlement register search page
	DirectoryURL = "https://www.nsi.bg/nrnm/index.php"

	// DirectoryService names the directory in errors and logs
	DirectoryService = "nsi"

	// DocumentService names the GRAO table host in errors and logs
	DocumentService = "grao"

	// SourceEncoding is the character set of both GRAO tables and NSI pages
	SourceEncoding = "windows-1251"

	// UserAgent is sent with every request; the directory rejects bare clients
	UserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:52.0) Gecko/20100101 Firefox/52.0"
)

// Output naming
const (
	// PeriodFilePrefix prefixes every per-period table file
	PeriodFilePrefix = "grao_data_"

	// CombinedFileName is the name of the merged table without extension
	CombinedFileName = "grao_data_combined"

	// CodeColumn is the stable code column of every output table
	CodeColumn = "ekatte"

	// PermanentPrefix prefixes per-period permanent-address columns
	PermanentPrefix = "permanent_"

	// CurrentPrefix prefixes per-period current-address columns
	CurrentPrefix = "current_"

	// PermanentPopulationColumn is the population column of matched tables
	PermanentPopulationColumn = "permanent_population"

	// CurrentPopulationColumn is the population column of matched tables
	CurrentPopulationColumn = "current_population"
)

// Cache naming
const (
	// ForwardBlob holds the key to code mapping
	ForwardBlob = "triple_to_ekatte"

	// ReverseBlob holds the code to source triple mapping
	ReverseBlob = "ekatte_to_triple"

	// FailuresBlob holds the keys with no directory match
	FailuresBlob = "failures"

	// SQLiteFileName is the database file of the sqlite cache backend
	SQLiteFileName = "disambiguation.db"
)

// Metrics
const (
	// MetricsNamespace prefixes every exported metric
	MetricsNamespace = "grao"
)
