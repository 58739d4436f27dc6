package main

import (
	"fmt"
	"time"

	"github.com/Conceptual-Machines/magda-lsystem-go/audio"
	"github.com/spf13/cobra"
)

func newAudioInfoCmd() *cobra.Command {
	var seek time.Duration
	cmd := &cobra.Command{
		Use:   "audio-info <file.wav>",
		Short: "Print the length and format of a synthesized WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := audio.Open(args[0])
			if err != nil {
				return err
			}
			player := audio.NewPlayer(track)
			defer player.Close()

			format := track.Format()
			rows := [][]string{
				{"file", args[0]},
				{"duration", track.Duration().Round(time.Millisecond).String()},
				{"sample rate", fmt.Sprintf("%d Hz", format.SampleRate)},
				{"channels", fmt.Sprint(format.NumChannels)},
				{"precision", fmt.Sprintf("%d bit", format.Precision*8)},
			}
			if seek > 0 {
				if err := player.Seek(seek); err != nil {
					return err
				}
				rows = append(rows, []string{"seek", player.Position().Round(time.Millisecond).String()})
			}
			fprintf(cmd, "%s", renderTable(rows))
			return nil
		},
	}
	cmd.Flags().DurationVar(&seek, "seek", 0, "report the position a player lands on after seeking here")
	return cmd
}
