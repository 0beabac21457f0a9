package limits

// Memory safety limits to prevent unbounded growth and OOM

const (
	// MaxScanRows is the maximum number of rows a single fetch may materialize
	MaxScanRows = 100000

	// MaxQueryConditions is the maximum number of WHERE/HAVING predicates in a single query
	MaxQueryConditions = 1000

	// MaxJoins is the maximum number of JOINs in a single query
	MaxJoins = 50

	// MaxOrderByFields is the maximum number of ORDER BY specifiers
	MaxOrderByFields = 20

	// MaxGroupByFields is the maximum number of GROUP BY expressions
	MaxGroupByFields = 20

	// MaxSelectFields is the maximum number of projected expressions in a tuple query
	MaxSelectFields = 100

	// MaxNativeQuerySize is the maximum size in bytes for native SQL text
	MaxNativeQuerySize = 1024 * 1024
)
