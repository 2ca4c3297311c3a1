// Package domain defines the core types and interfaces for the datasets service
package domain

// User is one account row from a dataset shard
type User struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	TweetCount  int     `json:"tweet_count"`
	ZScore      float64 `json:"z_score"`
}

// Post is one post row from a dataset shard
type Post struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
	Lang      string `json:"lang"`
	Text      string `json:"text"`
}

// Shard is one parsed dataset file
type Shard struct {
	ID    int
	Lang  string
	Users []User
	Posts []Post
}

// Account joins a user with their posts, ready for prompting
// Posts are ordered by CreatedAt ascending
type Account struct {
	User      User
	DatasetID int
	Lang      string
	Posts     []Post
}

// Stats summarizes one shard for the datasets CLI
type Stats struct {
	DatasetID int
	Lang      string
	Users     int
	Bots      int
	Posts     int
	// Scripts tallies the predominant script per post text
	Scripts map[string]int
}
