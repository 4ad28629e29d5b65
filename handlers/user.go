package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pliqo-backend/referral"
	"pliqo-backend/store"
)

// MeHandler returns the caller's profile with their payment settings.
func MeHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	d, err := st.Read(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"plan":            user.Plan,
		"level":           user.Level,
		"active":          user.Active,
		"role":            user.Role,
		"sponsorId":       user.SponsorID,
		"payment":         d.FindPayment(user.ID),
		"whatsappNumber":  user.WhatsappNumber,
		"landingVideoUrl": user.LandingVideoURL,
		"landingHeadline": user.LandingHeadline,
		"avatarUrl":       user.AvatarURL,
	})
}

// UpdateMeHandler changes the caller's name and/or email.
func UpdateMeHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := st.Update(c.Request.Context(), func(d *store.Data) error {
		u := d.FindUser(user.ID)
		if u == nil {
			return nil
		}
		if req.Name != "" {
			u.Name = req.Name
		}
		if req.Email != "" {
			if other := d.FindUserByEmail(req.Email); other != nil && other.ID != u.ID {
				return referral.ErrEmailTaken
			}
			u.Email = req.Email
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DeleteMeHandler removes the caller's account and everything it owns.
// The admin account is protected.
func DeleteMeHandler(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := referrals.DeleteAccount(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	bots.StopUser(user.ID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
