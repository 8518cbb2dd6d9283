// cmd/vstools/main.go
//
// Prints the tools directory of the newest installed Visual Studio,
// located via the VS###COMNTOOLS environment-variable convention.
// Exits 1 when no installation is found, for use in batch scripts:
//
//	for /f "delims=" %%d in ('vstools.exe') do set VSTOOLS=%%d

package main

import (
	"fmt"
	"os"

	"github.com/windowsadmins/hostprep/pkg/vsenv"
)

func main() {
	dir, err := vsenv.LocateTools()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(dir)
}
