package main

import (
	"fmt"

	ws "github.com/phanxgames/windowserver"
)

// runScript plays the script at path on an offscreen server until every
// step has executed. The returned server is left in its final state.
func runScript(c ws.Config, path string, maxFrames int) (*ws.Server, *ws.ScriptRunner, error) {
	runner, err := ws.LoadScriptFile(path)
	if err != nil {
		return nil, nil, err
	}
	srv, err := ws.NewServer(c, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	srv.SetScriptRunner(runner)
	for frames := 0; !runner.Done(); frames++ {
		if frames >= maxFrames {
			return srv, runner, fmt.Errorf("script %s did not finish within %d frames", path, maxFrames)
		}
		srv.Tick()
	}
	return srv, runner, runner.Err()
}
