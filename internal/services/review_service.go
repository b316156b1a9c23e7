package services

import (
	"errors"
	"math"

	"leder/internal/domain"
	"leder/internal/repos"
	"leder/internal/validate"
)

const (
	maxCommentLen   = 2000
	featuredMin     = 4
	featuredDefault = 3
	featuredMax     = 20
)

type ProductReviews struct {
	Reviews       []domain.Review `json:"reviews"`
	AverageRating float64         `json:"averageRating"`
	TotalReviews  int             `json:"totalReviews"`
}

// FeaturedReview is the short form shown on the home page.
type FeaturedReview struct {
	ID        string `json:"id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	UserName  string `json:"userName"`
	CreatedAt string `json:"createdAt"`
}

// ReviewPatch is an edit. Owners may change rating and comment; admins the status.
type ReviewPatch struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
	Status  *string `json:"status"`
}

type ReviewService struct {
	Reviews *repos.ReviewRepo
	Users   *repos.UserRepo
	Prods   *repos.ProductRepo
}

func NewReviewService(reviews *repos.ReviewRepo, users *repos.UserRepo, prods *repos.ProductRepo) *ReviewService {
	return &ReviewService{Reviews: reviews, Users: users, Prods: prods}
}

func clampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > 5 {
		return 5
	}
	return r
}

// AverageRating is the mean of the positive ratings rounded to one decimal.
// Zero ratings (questions) are left out; no ratings gives 0.
func AverageRating(reviews []domain.Review) float64 {
	sum, n := 0, 0
	for _, r := range reviews {
		if r.Rating > 0 {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(n)*10) / 10
}

// withThreads attaches replies (oldest first) and authors to top-level reviews.
func (s *ReviewService) withThreads(top []domain.Review) error {
	ids := make([]string, len(top))
	for i := range top {
		ids[i] = top[i].ID
	}
	replies, err := s.Reviews.Replies(ids)
	if err != nil {
		return err
	}
	userIDs := []string{}
	for _, r := range top {
		userIDs = append(userIDs, r.UserID)
	}
	for _, r := range replies {
		userIDs = append(userIDs, r.UserID)
	}
	authors, err := s.Users.Authors(userIDs)
	if err != nil {
		return err
	}
	byParent := map[string][]domain.Review{}
	for _, r := range replies {
		r.User = authors[r.UserID]
		byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
	}
	for i := range top {
		top[i].User = authors[top[i].UserID]
		top[i].Replies = byParent[top[i].ID]
		if top[i].Replies == nil {
			top[i].Replies = []domain.Review{}
		}
	}
	return nil
}

func (s *ReviewService) ForProduct(productID string) (ProductReviews, error) {
	top, err := s.Reviews.TopLevel(productID)
	if err != nil {
		return ProductReviews{}, err
	}
	if err := s.withThreads(top); err != nil {
		return ProductReviews{}, err
	}
	return ProductReviews{Reviews: top, AverageRating: AverageRating(top), TotalReviews: len(top)}, nil
}

func (s *ReviewService) Get(id string) (*domain.Review, error) {
	r, err := s.Reviews.Get(id)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !r.IsReply() {
		list := []domain.Review{*r}
		if err := s.withThreads(list); err != nil {
			return nil, err
		}
		return &list[0], nil
	}
	return r, nil
}

func (s *ReviewService) Create(u *domain.User, productID string, rating int, comment string) (*domain.Review, error) {
	if u == nil {
		return nil, ErrUnauthenticated
	}
	comment, ok := validate.Text(comment, maxCommentLen)
	if !ok {
		return nil, invalid(ErrInvalidInput, "Comment is required")
	}
	if _, err := s.Prods.Get(productID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	r := &domain.Review{ProductID: productID, UserID: u.ID, Rating: clampRating(rating), Comment: comment}
	if err := s.Reviews.Create(r); err != nil {
		if errors.Is(err, repos.ErrConflict) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}
	r.Likes = []string{}
	r.Replies = []domain.Review{}
	r.User = authorOf(u)
	return r, nil
}

func authorOf(u *domain.User) *domain.Author {
	return &domain.Author{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Avatar: u.Avatar, Role: u.Role}
}

// Reply answers a review. Replies stay one level deep: answering a reply
// attaches to its parent. An admin reply marks the parent replied.
func (s *ReviewService) Reply(u *domain.User, reviewID, comment string) (*domain.Review, error) {
	if u == nil {
		return nil, ErrUnauthenticated
	}
	comment, ok := validate.Text(comment, maxCommentLen)
	if !ok {
		return nil, invalid(ErrInvalidInput, "Comment is required")
	}
	parent, err := s.Reviews.Get(reviewID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if parent.IsReply() {
		if parent, err = s.Reviews.Get(*parent.ParentID); err != nil {
			return nil, err
		}
	}
	pid := parent.ID
	r := &domain.Review{ProductID: parent.ProductID, UserID: u.ID, Rating: 0, Comment: comment, ParentID: &pid}
	if err := s.Reviews.Create(r); err != nil {
		return nil, err
	}
	if u.IsAdmin() {
		if err := s.Reviews.SetStatus(parent.ID, domain.ReviewReplied); err != nil {
			return nil, err
		}
	}
	r.Likes = []string{}
	r.User = authorOf(u)
	return r, nil
}

func (s *ReviewService) ToggleLike(u *domain.User, reviewID string) (bool, int, error) {
	if u == nil {
		return false, 0, ErrUnauthenticated
	}
	if _, err := s.Reviews.Get(reviewID); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return false, 0, ErrNotFound
		}
		return false, 0, err
	}
	return s.Reviews.ToggleLike(reviewID, u.ID)
}

func (s *ReviewService) Update(u *domain.User, reviewID string, p ReviewPatch) (*domain.Review, error) {
	if u == nil {
		return nil, ErrUnauthenticated
	}
	r, err := s.Reviews.Get(reviewID)
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	owner := r.UserID == u.ID
	if !owner && !u.IsAdmin() {
		return nil, ErrForbidden
	}
	if u.IsAdmin() && p.Status != nil {
		if !domain.Contains(domain.ReviewStatuses, *p.Status) {
			return nil, invalid(ErrInvalidInput, "Unknown review status")
		}
		r.Status = *p.Status
	}
	if owner {
		if p.Rating != nil && !r.IsReply() {
			r.Rating = clampRating(*p.Rating)
		}
		if p.Comment != nil {
			c, ok := validate.Text(*p.Comment, maxCommentLen)
			if !ok {
				return nil, invalid(ErrInvalidInput, "Comment is required")
			}
			r.Comment = c
		}
	}
	if err := s.Reviews.Update(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReviewService) Delete(u *domain.User, reviewID string) error {
	if u == nil {
		return ErrUnauthenticated
	}
	r, err := s.Reviews.Get(reviewID)
	if errors.Is(err, repos.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if r.UserID != u.ID && !u.IsAdmin() {
		return ErrForbidden
	}
	return s.Reviews.Delete(reviewID)
}

func (s *ReviewService) Featured(limit int) ([]FeaturedReview, error) {
	if limit < 1 {
		limit = featuredDefault
	}
	if limit > featuredMax {
		limit = featuredMax
	}
	list, err := s.Reviews.Featured(featuredMin, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].UserID
	}
	authors, err := s.Users.Authors(ids)
	if err != nil {
		return nil, err
	}
	out := make([]FeaturedReview, 0, len(list))
	for _, r := range list {
		out = append(out, FeaturedReview{
			ID:        r.ID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			UserName:  shortName(authors[r.UserID]),
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// shortName renders "First L." and falls back to a generic label.
func shortName(a *domain.Author) string {
	if a == nil || a.FirstName == "" {
		return "Клієнт"
	}
	initial := ""
	for _, r := range a.LastName {
		initial = string(r)
		break
	}
	return a.FirstName + " " + initial + "."
}

// AdminList returns every top-level review with its product title and thread.
func (s *ReviewService) AdminList() ([]domain.Review, error) {
	top, err := s.Reviews.TopLevel("")
	if err != nil {
		return nil, err
	}
	if err := s.withThreads(top); err != nil {
		return nil, err
	}
	titles := map[string]string{}
	for i := range top {
		pid := top[i].ProductID
		t, ok := titles[pid]
		if !ok {
			if p, err := s.Prods.Get(pid); err == nil {
				t = p.Title
			} else if !errors.Is(err, repos.ErrNotFound) {
				return nil, err
			}
			titles[pid] = t
		}
		top[i].ProductTitle = t
	}
	return top, nil
}
