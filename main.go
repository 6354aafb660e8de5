// =============================================================================
// CSB 34-11 Remittance - Main Entry Point
// =============================================================================
//
// USAGE:
//   csb3411 encode     - Encode every order document in the input directory
//   csb3411 validate   - Validate order documents without writing files
//   csb3411 inspect    - Check the footers of generated files
//   csb3411 version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Record codec, encoder, validation, sources, generators
//   - pkg/       : Shared file utilities
//   - journals/  : Journal YAML configurations
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/csb3411-remittance/cmd"
)

func main() {
	cmd.Execute()
}
