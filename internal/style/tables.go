package style

// DefaultColors maps style keys to marker colours.
var DefaultColors = map[string]Colors{
	"open_unassigned_unclaimed":          {Fill: "#d0021b", Stroke: "#e30001"},
	"open_unassigned_claimed":            {Fill: "#fab92e", Stroke: "#f79820"},
	"open_assigned_unclaimed":            {Fill: "#fab92e", Stroke: "#f79820"},
	"open_assigned_claimed":              {Fill: "#f0f032", Stroke: "#85863f"},
	"open_partially-completed_unclaimed": {Fill: "#fab92e", Stroke: "#f79820"},
	"open_partially-completed_claimed":   {Fill: "#0054bb", Stroke: "#0054bb"},
	"open_needs-follow-up_unclaimed":     {Fill: "#fab92e", Stroke: "#f79820"},
	"open_needs-follow-up_claimed":       {Fill: "#ea51eb", Stroke: "#e018e1"},
	"open_unresponsive_unclaimed":        {Fill: "#787878", Stroke: "#5d5d5d"},
	"open_unresponsive_claimed":          {Fill: "#787878", Stroke: "#5d5d5d"},
	"closed_completed_unclaimed":         {Fill: "#1d8b3e", Stroke: "#0b6f29"},
	"closed_completed_claimed":           {Fill: "#0fa355", Stroke: "#0b8948"},
	"closed_incomplete_unclaimed":        {Fill: "#000000", Stroke: "#000000"},
	"closed_incomplete_claimed":          {Fill: "#000000", Stroke: "#000000"},
	"closed_out-of-scope_unclaimed":      {Fill: "#d3d3d3", Stroke: "#b5b5b5"},
	"closed_out-of-scope_claimed":        {Fill: "#d3d3d3", Stroke: "#b5b5b5"},
	"closed_done-by-others_unclaimed":    {Fill: "#b3e5c8", Stroke: "#7fc79c"},
	"closed_done-by-others_claimed":      {Fill: "#b3e5c8", Stroke: "#7fc79c"},
	"closed_no-help-wanted_unclaimed":    {Fill: "#d3d3d3", Stroke: "#b5b5b5"},
	"closed_no-help-wanted_claimed":      {Fill: "#d3d3d3", Stroke: "#b5b5b5"},
	"closed_rejected_unclaimed":          {Fill: "#d3d3d3", Stroke: "#b5b5b5"},
	"closed_rejected_claimed":            {Fill: "#d3d3d3", Stroke: "#b5b5b5"},
	"closed_duplicate_unclaimed":         {Fill: "#d3d3d3", Stroke: "#b5b5b5"},
	"closed_duplicate_claimed":           {Fill: "#d3d3d3", Stroke: "#b5b5b5"},
}

// DefaultShapes maps work type names to marker shapes.
var DefaultShapes = map[string]Shape{
	"debris":           ShapeTriangle,
	"demolition":       ShapeTriangle,
	"muck_out":         ShapeSquare,
	"mold_remediation": ShapeSquare,
	"trees":            ShapeDiamond,
	"tarp":             ShapeHouse,
	"rebuild":          ShapeHouse,
	"home_repair":      ShapeHouse,
	"chimney":          ShapeHouse,
	"wellness_check":   ShapeCircle,
	"food":             ShapeCircle,
	"water_bottles":    ShapeCircle,
	"sandbagging":      ShapeHexagon,
	"snow_ground":      ShapeHexagon,
	"snow_roof":        ShapeHexagon,
	"ash":              ShapeHexagon,
}
