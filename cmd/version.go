package cmd

import (
	"fmt"
	"io"

	"grimm.is/rtlink/internal/brand"
)

// RunVersion prints build information.
func RunVersion(w io.Writer) {
	fmt.Fprintln(w, brand.BuildInfo())
}
