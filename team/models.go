package team

// Config is the slice of a team consumed by batch assignment: the regions its
// members may draw work from and how much work one claim hands out. The engine
// never mutates teams.
type Config struct {
	TeamID         string
	AllowedRegions []string
	BatchSize      int
}

// User is a reviewer identity, optionally bound to a team.
type User struct {
	ID          string
	Username    string
	TeamID      *string
	DisplayName *string
	IsActive    bool
}
