// Package contract implements the feedback contract lifecycle: creation
// gating, rating selection on the rendered message, and the locked/confirmed
// transition that awards points exactly once.
package contract

// Rating is one entry of the fixed star-rating table. Value is the stable
// component value carried by the dropdown; Points is what the contract
// creator earns when a builder confirms at this rating.
type Rating struct {
	Value           string
	Label           string
	Points          int
	MenuDescription string
	FullDescription string
}

// Ratings is the ordered rating table, worst first.
var Ratings = []Rating{
	{
		Value:           "stars-0",
		Label:           "\U0001F4A3",
		Points:          0,
		MenuDescription: "Provided minimal to no feedback",
		FullDescription: "The feedback was empty, off-topic, or otherwise gave the builder nothing to work with. No points are awarded.",
	},
	{
		Value:           "stars-1",
		Label:           "⭐",
		Points:          1,
		MenuDescription: "Provided partial feedback, or subpar feedback with demonstrable effort",
		FullDescription: "The feedback covered part of the tower or missed the mark in places, but real effort went into it.",
	},
	{
		Value:           "stars-2",
		Label:           "⭐⭐",
		Points:          2,
		MenuDescription: "Provided complete feedback",
		FullDescription: "The feedback covered the whole tower and gave the builder something actionable throughout.",
	},
	{
		Value:           "stars-3",
		Label:           "⭐⭐⭐",
		Points:          3,
		MenuDescription: "Provided thoughtful, thorough, insightful feedback; went the extra mile",
		FullDescription: "The feedback was thorough and insightful from start to finish. The feedbacker went the extra mile.",
	},
}

// RatingByValue looks up a rating by its component value.
func RatingByValue(value string) (Rating, bool) {
	for _, r := range Ratings {
		if r.Value == value {
			return r, true
		}
	}
	return Rating{}, false
}

// RatingByPoints looks up a rating by its point value.
func RatingByPoints(points int) (Rating, bool) {
	for _, r := range Ratings {
		if r.Points == points {
			return r, true
		}
	}
	return Rating{}, false
}
