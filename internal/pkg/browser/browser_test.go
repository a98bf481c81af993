package browser

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		fetcher string
		want    string
		wantErr bool
	}{
		{"", "*browser.ChromeBrowser", false},
		{FetcherChrome, "*browser.ChromeBrowser", false},
		{FetcherStatic, "*browser.StaticBrowser", false},
		{"playwright", "", true},
	}
	for _, tt := range tests {
		b, err := New(tt.fetcher, Options{})
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q) err = %v", tt.fetcher, err)
			continue
		}
		if err != nil {
			continue
		}
		switch b.(type) {
		case *ChromeBrowser:
			if tt.want != "*browser.ChromeBrowser" {
				t.Errorf("New(%q) = %T", tt.fetcher, b)
			}
		case *StaticBrowser:
			if tt.want != "*browser.StaticBrowser" {
				t.Errorf("New(%q) = %T", tt.fetcher, b)
			}
		default:
			t.Errorf("New(%q) = %T", tt.fetcher, b)
		}
	}
}
