package db

import "time"

// FlagArticlesModified is raised by ingestion and cleared after a similarity cycle.
const FlagArticlesModified = "articles_modified"

// Source maps news.sources.
type Source struct {
	SourceID  int64     `gorm:"column:source_id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:text;not null;unique"`
	URL       string    `gorm:"column:url;type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (Source) TableName() string { return "news.sources" }

// Article maps news.articles.
type Article struct {
	ArticleID       int64      `gorm:"column:article_id;primaryKey;autoIncrement"`
	SourceID        int64      `gorm:"column:source_id;type:bigint;not null"`
	URL             string     `gorm:"column:url;type:text;not null;unique"`
	Title           string     `gorm:"column:title;type:text;not null"`
	Description     string     `gorm:"column:description;type:text;not null;default:''"`
	Language        string     `gorm:"column:language;type:text;not null;default:'english'"`
	PublicationDate *time.Time `gorm:"column:publication_date;type:timestamptz"`
	Photo           *string    `gorm:"column:photo;type:text"`
	CreatedAt       time.Time  `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Article) TableName() string { return "news.articles" }

// SimilarPair maps news.similar_articles. Every (id1, id2) row has a mirror
// (id2, id1) row with the same similarity.
type SimilarPair struct {
	ID1        int64   `gorm:"column:id1;type:bigint;primaryKey;autoIncrement:false"`
	ID2        int64   `gorm:"column:id2;type:bigint;primaryKey;autoIncrement:false"`
	Similarity float64 `gorm:"column:similarity;type:double precision;not null"`
}

func (SimilarPair) TableName() string { return "news.similar_articles" }

// Flag maps news.flags.
type Flag struct {
	Name      string    `gorm:"column:name;type:text;primaryKey"`
	Value     bool      `gorm:"column:value;type:boolean;not null;default:false"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Flag) TableName() string { return "news.flags" }

// SimilarityRun maps news.similarity_runs.
type SimilarityRun struct {
	RunID                 int64      `gorm:"column:run_id;primaryKey;autoIncrement"`
	RunUUID               string     `gorm:"column:run_uuid;type:uuid;not null;unique"`
	Forced                bool       `gorm:"column:forced;type:boolean;not null;default:false"`
	Status                string     `gorm:"column:status;type:text;not null;default:'running'"`
	ArticleCount          int        `gorm:"column:article_count;type:integer;not null;default:0"`
	TitleVocabulary       int        `gorm:"column:title_vocabulary;type:integer;not null;default:0"`
	DescriptionVocabulary int        `gorm:"column:description_vocabulary;type:integer;not null;default:0"`
	Matches               int        `gorm:"column:matches;type:integer;not null;default:0"`
	SameSourceMatches     int        `gorm:"column:same_source_matches;type:integer;not null;default:0"`
	StartedAt             time.Time  `gorm:"column:started_at;type:timestamptz;not null;default:now()"`
	FinishedAt            *time.Time `gorm:"column:finished_at;type:timestamptz"`
	ErrorMessage          *string    `gorm:"column:error_message;type:text"`
}

func (SimilarityRun) TableName() string { return "news.similarity_runs" }

func autoMigrateModels() []any {
	return []any{
		&Source{},
		&Article{},
		&SimilarPair{},
		&Flag{},
		&SimilarityRun{},
	}
}
