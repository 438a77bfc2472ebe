package dashboard

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/loopinhq/loopin"
)

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body>
`

const pageTail = `</body>
</html>
`

func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, pageHead, templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, pageTail)
		return err
	})
}

// zohoFragmentScript reads the implicit-grant fragment, strips it from the
// address bar and posts the token to the server.
const zohoFragmentScript = `<p>Connecting your Zoho account...</p>
<script>
(function () {
  var params = new URLSearchParams(window.location.hash.replace(/^#/, ""));
  history.replaceState(null, "", window.location.pathname);
  fetch("/auth/zoho/implicit", {
    method: "POST",
    credentials: "same-origin",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({
      access_token: params.get("access_token") || "",
      state: params.get("state") || "",
      expires_in: params.get("expires_in") || ""
    })
  }).finally(function () {
    window.location.replace("/dashboard");
  });
})();
</script>
`

func zohoCallbackPage() templ.Component {
	return page("Connecting Zoho", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, zohoFragmentScript)
		return err
	}))
}

func dashboardView(accounts []account, backendConnected bool) templ.Component {
	byProvider := make(map[loopin.Provider]account, len(accounts))
	for _, a := range accounts {
		byProvider[a.Provider] = a
	}

	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var err error
		write := func(format string, args ...any) {
			if err == nil {
				_, err = fmt.Fprintf(w, format, args...)
			}
		}

		write("<h1>Loopin</h1>\n<ul id=\"accounts\">\n")
		for _, p := range loopin.Providers() {
			a, ok := byProvider[p]
			switch {
			case !ok:
				write("<li data-provider=%q>%s <a href=\"/auth/%s/start\">Connect</a></li>\n",
					p.Key(), templ.EscapeString(p.Title()), p.Key())
			case a.Status == statusExpired:
				write("<li data-provider=%q>%s %s (expired) <a href=\"/auth/%s/start\">Reconnect</a></li>\n",
					p.Key(), templ.EscapeString(p.Title()), templ.EscapeString(a.Email), p.Key())
			default:
				write("<li data-provider=%q>%s %s (connected)</li>\n",
					p.Key(), templ.EscapeString(p.Title()), templ.EscapeString(a.Email))
			}
		}
		write("</ul>\n")
		if backendConnected {
			write("<p id=\"backend\">Summaries enabled</p>\n")
		} else {
			write("<p id=\"backend\">Summaries not enabled</p>\n")
		}
		return err
	})
	return page("Loopin dashboard", body)
}
