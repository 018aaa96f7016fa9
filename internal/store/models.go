package store

import (
	"time"

	"github.com/couchcryptid/worksite-map/internal/domain"
)

type worksiteRecord struct {
	ID            int64   `gorm:"primaryKey;autoIncrement:false"`
	Latitude      float64 `gorm:"not null"`
	Longitude     float64 `gorm:"not null"`
	City          string
	Label         string
	SiteUpdatedAt time.Time        `gorm:"column:site_updated_at"`
	WorkTypes     []workTypeRecord `gorm:"foreignKey:WorksiteID;constraint:OnDelete:CASCADE"`
}

func (worksiteRecord) TableName() string { return "worksites" }

type workTypeRecord struct {
	ID         uint   `gorm:"primaryKey"`
	WorksiteID int64  `gorm:"index;not null"`
	Position   int    `gorm:"not null"`
	WorkType   string `gorm:"size:64;not null"`
	Status     string `gorm:"size:64;not null"`
	ClaimedBy  *int64
}

func (workTypeRecord) TableName() string { return "work_types" }

var models = []any{
	&worksiteRecord{},
	&workTypeRecord{},
}

func toRecord(site domain.Worksite) worksiteRecord {
	rec := worksiteRecord{
		ID:            site.ID,
		Latitude:      site.Location.Lat,
		Longitude:     site.Location.Lon,
		City:          site.City,
		Label:         site.Label,
		SiteUpdatedAt: site.UpdatedAt.UTC(),
		WorkTypes:     make([]workTypeRecord, 0, len(site.WorkTypes)),
	}
	for i, wt := range site.WorkTypes {
		rec.WorkTypes = append(rec.WorkTypes, workTypeRecord{
			WorksiteID: site.ID,
			Position:   i,
			WorkType:   wt.WorkType,
			Status:     string(wt.Status),
			ClaimedBy:  wt.ClaimedBy,
		})
	}
	return rec
}

func (r worksiteRecord) toDomain() domain.Worksite {
	site := domain.Worksite{
		ID:        r.ID,
		Location:  domain.Location{Lat: r.Latitude, Lon: r.Longitude},
		City:      r.City,
		Label:     r.Label,
		UpdatedAt: r.SiteUpdatedAt.UTC(),
		WorkTypes: make([]domain.WorkType, 0, len(r.WorkTypes)),
	}
	for _, wt := range r.WorkTypes {
		site.WorkTypes = append(site.WorkTypes, domain.WorkType{
			WorkType:  wt.WorkType,
			Status:    domain.Status(wt.Status),
			ClaimedBy: wt.ClaimedBy,
		})
	}
	return site
}
