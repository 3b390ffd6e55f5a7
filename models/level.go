package models

// LevelThreshold maps a level to the minimum lifetime points required for it.
type LevelThreshold struct {
	Level     int   `json:"level"`
	MinPoints int64 `json:"min_points"`
}

// LevelThresholds is the static level table, strictly increasing in both
// fields. Level 1 starts at 0 so every user always has a valid level.
var LevelThresholds = []LevelThreshold{
	{Level: 1, MinPoints: 0},
	{Level: 2, MinPoints: 500},
	{Level: 3, MinPoints: 1500},
	{Level: 4, MinPoints: 3000},
	{Level: 5, MinPoints: 6000},
	{Level: 6, MinPoints: 10000},
	{Level: 7, MinPoints: 16000},
	{Level: 8, MinPoints: 25000},
	{Level: 9, MinPoints: 40000},
	{Level: 10, MinPoints: 60000},
}

// LevelForPoints scans the table from the top so one large award can jump
// several levels at once and land directly on the final one.
func LevelForPoints(points int64) int {
	for i := len(LevelThresholds) - 1; i >= 0; i-- {
		if points >= LevelThresholds[i].MinPoints {
			return LevelThresholds[i].Level
		}
	}
	return 1
}

// NextThreshold returns the threshold for the level after the given one, or
// nil when the user is already at the top of the table.
func NextThreshold(level int) *LevelThreshold {
	for i := range LevelThresholds {
		if LevelThresholds[i].Level > level {
			return &LevelThresholds[i]
		}
	}
	return nil
}
