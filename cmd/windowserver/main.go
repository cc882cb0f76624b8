// Command windowserver hosts the compositing window server on a display,
// renders scripts headlessly and dumps the resulting component tree.
package main

func main() {
	Execute()
}
