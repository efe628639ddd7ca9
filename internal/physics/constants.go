package physics

const (
	CollisionAxisTolerance = 1e-9

	DefaultBodyRadius = 0.5
	DefaultBodyHeight = 2.0
	DefaultCellSize   = 2
	DefaultStepOffset = 0.3

	groundSkin = 0.01

	// levelMargin pads level bounds derived from the boxes so bodies near the edge still
	// find their neighbours in the broad-phase grid.
	levelMargin = 8.0

	// spaceScale converts world units to resolv units. resolv treats sizes as whole pixels
	// and trims one unit off the far edge of every object.
	spaceScale = 16
	// probePad widens broad-phase queries on X and Z so that trim never hides a neighbour.
	probePad = 0.25

	colliderTag = "collider"
	triggerTag  = "trigger"
	probeTag    = "probe"
)
