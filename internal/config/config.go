package config

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultAttendancePoints is the award for a confirmed event attendance.
	DefaultAttendancePoints = 50

	// DefaultLevelStep is the number of points per level:
	// level = points/step + 1.
	DefaultLevelStep = 200
)

// Points holds the tunable values of the points ledger. It is built once
// at startup and injected into the services; nothing reads settings
// mid-transaction.
type Points struct {
	AttendancePoints int
	LevelStep        int
}

// DefaultPoints returns the points configuration with default values.
func DefaultPoints() Points {
	return Points{
		AttendancePoints: DefaultAttendancePoints,
		LevelStep:        DefaultLevelStep,
	}
}
