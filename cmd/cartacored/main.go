// Command cartacored runs the cartacore streaming core's demo CLI: a
// cobra command tree over a synthetic image cube (see internal/cmd).
package main

import "github.com/MeKo-Tech/cartacore/internal/cmd"

func main() {
	cmd.Execute()
}
