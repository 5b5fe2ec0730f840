package tasks

import (
	"sort"
	"strings"

	"github.com/desertthunder/yto/internal/models"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SearchResult pairs a matched playlist with the videos inside it that also
// matched. Distance is the best fuzzy rank across the playlist title and its
// videos (lower is better).
type SearchResult struct {
	Playlist models.Playlist
	Videos   []models.Video
	Distance int
}

// Search fuzzy-ranks the library against query, matching playlist titles and
// video titles/channels case-insensitively. Results come back best-first.
func (o *Organizer) Search(query string) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var results []SearchResult
	for _, p := range o.collection.Playlists() {
		best := fuzzy.RankMatchNormalizedFold(query, p.Title)

		var matched []models.Video
		for _, v := range p.Videos {
			rank := fuzzy.RankMatchNormalizedFold(query, v.Title)
			if channelRank := fuzzy.RankMatchNormalizedFold(query, v.Channel); rank < 0 || (channelRank >= 0 && channelRank < rank) {
				rank = channelRank
			}
			if rank < 0 {
				continue
			}
			matched = append(matched, v)
			if best < 0 || rank < best {
				best = rank
			}
		}

		if best < 0 {
			continue
		}
		results = append(results, SearchResult{Playlist: p, Videos: matched, Distance: best})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	return results
}
