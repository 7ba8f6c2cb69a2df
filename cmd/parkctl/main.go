// Command parkctl drives the ParkPulse client SDK from a terminal: it
// resolves nearby parks for a position and manages favorites the same way
// the browser does, keeping cookies in a local state directory.
package main

func main() {
	Execute()
}
