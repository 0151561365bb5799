package cmd

import (
	"fmt"

	"github.com/khrees2412/cvbuilder/internal/profile"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your account profile",
	Long:  "The account profile belongs to the logged in user and is shared by all of their CVs",
}

var showProfileCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your account profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}

		p, err := application.Profiles.Get(ctx)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}

		fmt.Println(titleStyle.Render("Profile"))
		printField("Name", p.FullName)
		printField("Email", p.Email)
		printField("Phone", p.Phone)
		printField("Location", p.Location)
		printField("Website", p.Website)
		printField("Avatar", p.AvatarURL)
		printField("Bio", p.Bio)
		if !p.UpdatedAt.IsZero() {
			fmt.Println(mutedStyle.Render("Updated " + p.UpdatedAt.Local().Format("2006-01-02 15:04")))
		}
		return nil
	},
}

var setProfileCmd = &cobra.Command{
	Use:   "set",
	Short: "Update account profile fields",
	Example: `  cvbuilder profile set --name "Ana Silva" --location Lisboa
  cvbuilder profile set --bio "Backend engineer who likes boring infrastructure"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, ctx, err := sessionFromCmd(cmd)
		if err != nil {
			return err
		}

		patch := profile.Patch{
			FullName:  changedString(cmd, "name"),
			Email:     changedString(cmd, "email"),
			Phone:     changedString(cmd, "phone"),
			Bio:       changedString(cmd, "bio"),
			Location:  changedString(cmd, "location"),
			Website:   changedString(cmd, "website"),
			AvatarURL: changedString(cmd, "avatar"),
		}
		if patch == (profile.Patch{}) {
			fmt.Println("No fields to update. Use flags like --name, --bio, etc.")
			return nil
		}

		if _, err := application.Profiles.Update(ctx, patch); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		fmt.Println("✓ Profile updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(setProfileCmd)

	setProfileCmd.Flags().String("name", "", "Full name")
	setProfileCmd.Flags().String("email", "", "Email address")
	setProfileCmd.Flags().String("phone", "", "Phone number")
	setProfileCmd.Flags().String("bio", "", "Short bio (at most 500 characters)")
	setProfileCmd.Flags().String("location", "", "City or region")
	setProfileCmd.Flags().String("website", "", "Personal website")
	setProfileCmd.Flags().String("avatar", "", "Avatar image URL")
}
