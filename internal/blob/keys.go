package blob

// Logical keys for the engine's persisted local state.
const (
	KeyWatched         = "movies-cache"
	KeyBacklog         = "backlog-cache"
	KeyKnownGroups     = "known-groups"
	KeyCurrentGroupID  = "current-group-id"
	KeyCurrentGroup    = "current-group-name"
	KeyYearlyGoals     = "yearly-goals"
	KeyCustomGoals     = "custom-goals"
	KeyPopularityCache = "popularity-cache"
)
