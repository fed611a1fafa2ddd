/*
Copyright © 2026 Pressroom Labs <oss@pressroomhq.dev>
*/
package main

import "github.com/pressroomhq/scrubpress/cmd"

func main() {
	cmd.Execute()
}
