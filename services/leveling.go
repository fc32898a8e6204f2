package services

// levelThresholds[i] is the cumulative point total required for level i+1.
// The table is fixed; tuning it is a data change, not a code change.
var levelThresholds = [...]int64{
	0, 100, 250, 450, 700, 1000, 1350, 1750, 2200, 2700,
	3250, 3850, 4500, 5200, 5950, 6750, 7600, 8500, 9450, 10500,
}

// MaxLevel is the highest level the threshold table can produce.
const MaxLevel = len(levelThresholds)

// LevelForPoints maps a cumulative point total to its level and the threshold
// for the next level. Pure and total for all non-negative inputs. Past the top
// of the table the next-level threshold saturates at the table maximum.
func LevelForPoints(totalPoints int64) (level int, nextThreshold int64) {
	level = 1
	for i := len(levelThresholds) - 1; i >= 0; i-- {
		if totalPoints >= levelThresholds[i] {
			level = i + 1
			break
		}
	}
	if level < MaxLevel {
		nextThreshold = levelThresholds[level]
	} else {
		nextThreshold = levelThresholds[MaxLevel-1]
	}
	return level, nextThreshold
}
