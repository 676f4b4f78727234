// Command wizard is the CLI entry point for the Wizard's Toolkit.
package main

func main() {
	Execute()
}
