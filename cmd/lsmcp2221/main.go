// lsmcp2221: List all connected MCP2221A USB-I2C bridges
//
// This tool enumerates all MCP2221A bridges connected to the system and
// displays their serial numbers, so one can be picked with the
// "mcp2221:<selector>" bus name of the other tools.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/gousb"
	"github.com/herlein/gosabre/pkg/mcp2221"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output (show additional device details)")
	flag.Parse()

	// Create USB context
	context := gousb.NewContext()
	defer context.Close()

	devices, err := mcp2221.FindAllDevices(context)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to enumerate devices: %v\n", err)
		os.Exit(1)
	}

	if len(devices) == 0 {
		fmt.Println("No MCP2221A devices found")
		os.Exit(0)
	}

	fmt.Printf("Found %d MCP2221A device(s):\n", len(devices))
	fmt.Println()

	for i, device := range devices {
		defer device.Close()

		if *verbose {
			fmt.Printf("Device #%d:\n", i)
			fmt.Printf("  Serial:       %s\n", device.Serial)
			fmt.Printf("  Bus:Address:  %d:%d\n", device.Bus, device.Address)
			fmt.Printf("  Manufacturer: %s\n", device.Manufacturer)
			fmt.Printf("  Product:      %s\n", device.Product)

			hw, fw, err := device.Revision()
			if err == nil {
				fmt.Printf("  Hardware:     %s\n", hw)
				fmt.Printf("  Firmware:     %s\n", fw)
			} else {
				fmt.Printf("  Revision:     (error: %v)\n", err)
			}
			fmt.Println()
		} else {
			fmt.Printf("  #%d  %s  %d:%d\n", i, device.Serial, device.Bus, device.Address)
		}
	}

	if !*verbose {
		fmt.Println()
		fmt.Println("Use -bus flag with other tools to select device:")
		fmt.Println("  -bus \"mcp2221:#0\"      Select by index")
		fmt.Println("  -bus \"mcp2221:1:10\"    Select by bus:address")
		fmt.Println("  -bus \"mcp2221:009a\"    Select by serial (if unique)")
	}
}
