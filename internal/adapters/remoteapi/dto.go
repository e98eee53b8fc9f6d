package remoteapi

import (
	"github.com/oapi-codegen/nullable"

	"github.com/foodswipe/foodswipe-edge/internal/domain"
)

type userDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u userDTO) toDomain() domain.User {
	return domain.User{ID: domain.UserID(u.ID), Name: u.Name, Email: u.Email}
}

type authResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	User    userDTO `json:"user"`
}

type restaurantDTO struct {
	// id is null when the API could not persist the place.
	ID               nullable.Nullable[int64] `json:"id"`
	PlaceID          string                   `json:"place_id"`
	Name             string                   `json:"name"`
	Address          string                   `json:"address"`
	Rating           float64                  `json:"rating"`
	UserRatingsTotal int                      `json:"user_ratings_total"`
	PhotoReference   string                   `json:"photo_reference"`
	IsFavorite       bool                     `json:"is_favorite"`
}

func (r restaurantDTO) toDomain() domain.Restaurant {
	out := domain.Restaurant{
		PlaceID:          domain.PlaceID(r.PlaceID),
		Name:             r.Name,
		Address:          r.Address,
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		PhotoReference:   domain.PhotoReference(r.PhotoReference),
		IsFavorite:       r.IsFavorite,
	}
	if r.ID.IsSpecified() && !r.ID.IsNull() {
		if v, err := r.ID.Get(); err == nil {
			id := domain.RestaurantID(v)
			out.ID = &id
		}
	}
	return out
}

type reviewDTO struct {
	AuthorName              string  `json:"author_name"`
	Rating                  float64 `json:"rating"`
	RelativeTimeDescription string  `json:"relative_time_description"`
	Text                    string  `json:"text"`
}

type restaurantDetailsDTO struct {
	FormattedAddress     string `json:"formatted_address"`
	FormattedPhoneNumber string `json:"formatted_phone_number"`
	Website              string `json:"website"`
	URL                  string `json:"url"`
	OpeningHours         *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Reviews []reviewDTO `json:"reviews"`
	Photos  []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos"`
}

type restaurantDetailDTO struct {
	restaurantDTO
	Lat     *float64              `json:"lat"`
	Lng     *float64              `json:"lng"`
	Details *restaurantDetailsDTO `json:"details"`
}

func (r restaurantDetailDTO) toDomain() domain.RestaurantDetail {
	out := domain.RestaurantDetail{
		Restaurant: r.restaurantDTO.toDomain(),
		Latitude:   r.Lat,
		Longitude:  r.Lng,
	}
	if d := r.Details; d != nil {
		dd := &domain.RestaurantDetails{
			FormattedAddress:     d.FormattedAddress,
			FormattedPhoneNumber: d.FormattedPhoneNumber,
			Website:              d.Website,
			URL:                  d.URL,
		}
		if d.OpeningHours != nil {
			dd.OpeningHours = d.OpeningHours.WeekdayText
		}
		for _, rv := range d.Reviews {
			dd.Reviews = append(dd.Reviews, domain.Review(rv))
		}
		for _, p := range d.Photos {
			dd.Photos = append(dd.Photos, domain.PhotoReference(p.PhotoReference))
		}
		out.Details = dd
	}
	return out
}

type textSearchRequest struct {
	TextQuery string   `json:"textQuery"`
	Fields    []string `json:"fields,omitempty"`
}

type placeDTO struct {
	ID          string `json:"id"`
	DisplayName *struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string `json:"formattedAddress"`
	Location         *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
	Photos []struct {
		Name     string `json:"name"`
		WidthPx  int    `json:"widthPx"`
		HeightPx int    `json:"heightPx"`
	} `json:"photos"`
}

// textSearchResponse accepts either a single place or a {"places": [...]} envelope.
type textSearchResponse struct {
	placeDTO
	Places []placeDTO `json:"places"`
}

func (p placeDTO) toDomain() domain.Place {
	out := domain.Place{
		ID:               domain.PlaceID(p.ID),
		FormattedAddress: p.FormattedAddress,
	}
	if p.DisplayName != nil {
		out.DisplayName = p.DisplayName.Text
	}
	if p.Location != nil {
		out.Location = &domain.Location{
			Latitude:  p.Location.Latitude,
			Longitude: p.Location.Longitude,
			Label:     out.DisplayName,
		}
	}
	for _, ph := range p.Photos {
		out.Photos = append(out.Photos, domain.PlacePhoto{
			Reference: domain.PhotoReference(ph.Name),
			Width:     ph.WidthPx,
			Height:    ph.HeightPx,
		})
	}
	return out
}

type placeDetailDTO struct {
	PlaceID              string   `json:"place_id"`
	Name                 string   `json:"name"`
	FormattedAddress     string   `json:"formatted_address"`
	Rating               *float64 `json:"rating"`
	UserRatingsTotal     *int     `json:"user_ratings_total"`
	FormattedPhoneNumber string   `json:"formatted_phone_number"`
	Website              string   `json:"website"`
	Photos               []struct {
		PhotoReference string `json:"photo_reference"`
		Width          int    `json:"width"`
		Height         int    `json:"height"`
	} `json:"photos"`
}

func (p placeDetailDTO) toDomain() domain.PlaceDetail {
	out := domain.PlaceDetail{
		PlaceID:              domain.PlaceID(p.PlaceID),
		Name:                 p.Name,
		FormattedAddress:     p.FormattedAddress,
		Rating:               p.Rating,
		UserRatingsTotal:     p.UserRatingsTotal,
		FormattedPhoneNumber: p.FormattedPhoneNumber,
		Website:              p.Website,
	}
	for _, ph := range p.Photos {
		out.Photos = append(out.Photos, domain.PlacePhoto{
			Reference: domain.PhotoReference(ph.PhotoReference),
			Width:     ph.Width,
			Height:    ph.Height,
		})
	}
	return out
}

type addFavoriteRequest struct {
	RestaurantID int64 `json:"restaurant_id"`
}
