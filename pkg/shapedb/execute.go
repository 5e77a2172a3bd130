package shapedb

import "github.com/shapedb/shapedb/internal/cli"

// Execute runs the ShapeDB CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
