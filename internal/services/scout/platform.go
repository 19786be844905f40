package scout

import "fmt"

// platformPages describes where to find listing pages on a source platform
type platformPages struct {
	BaseURL      string
	TrendingPath string
	DefaultPaths []string
	CategoryPath string // fmt pattern taking the category slug
}

// platforms holds the supported source platforms. itch is the primary
// target; adding a platform is a matter of adding its page map.
var platforms = map[string]platformPages{
	"itch": {
		BaseURL:      "https://itch.io",
		TrendingPath: "/games",
		DefaultPaths: []string{
			"/games/new-and-popular",
			"/games/newest",
			"/games/top-rated",
		},
		CategoryPath: "/games/genre-%s",
	},
}

// pagesForPlatform returns the listing page URLs to visit. With category
// labels present, one page per category plus the trending page; otherwise
// the platform's fixed default set.
func pagesForPlatform(platform string, categories []string) ([]string, error) {
	p, ok := platforms[platform]
	if !ok {
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}

	if len(categories) == 0 {
		pages := make([]string, 0, len(p.DefaultPaths))
		for _, path := range p.DefaultPaths {
			pages = append(pages, p.BaseURL+path)
		}
		return pages, nil
	}

	pages := make([]string, 0, len(categories)+1)
	for _, category := range categories {
		pages = append(pages, p.BaseURL+fmt.Sprintf(p.CategoryPath, category))
	}
	pages = append(pages, p.BaseURL+p.TrendingPath)
	return pages, nil
}
