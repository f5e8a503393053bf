package a

import (
	"net/http"
	"strings"
)

func fetch() {
	_, _ = http.Get("http://localhost/session")   // want "use the smrs client instead of http.Get"
	_, _ = http.Head("http://localhost/session")  // want "use the smrs client instead of http.Head"
	_, _ = http.Post("http://localhost/save", "application/json", strings.NewReader("{}")) // want "use the smrs client instead of http.Post"
	_, _ = http.PostForm("http://localhost/save", nil) // want "use the smrs client instead of http.PostForm"

	c := http.DefaultClient // want "use the smrs client instead of http.DefaultClient"
	_ = c

	own := &http.Client{}
	_, _ = own.Get("http://localhost/list")
}
