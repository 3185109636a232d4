package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/openshare/internal/db"
)

// ReportService 记录针对帖子的举报，留待人工处理
type ReportService struct {
	db *gorm.DB
}

// NewReportService 构造 ReportService
func NewReportService(gdb *gorm.DB) *ReportService {
	return &ReportService{db: gdb}
}

// Report files a pending report against an existing post. Repeated reports
// by the same user are allowed, matching the original behaviour.
func (s *ReportService) Report(ctx context.Context, postID, reporterID uint) (*db.Report, error) {
	var post db.Post
	if err := s.db.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, retrievalErr("load post", err)
	}

	report := db.Report{PostID: postID, ReporterID: reporterID, Status: "pending"}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		return nil, writeErr("create report", err)
	}

	return &report, nil
}
