// Command seed provisions a demo project with sprints and tasks against a
// running API instance. Creates are independent HTTP calls: entities created
// before a failure stay committed.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

const timeout = 10 * time.Second

var statuses = []string{"To Do", "Doing", "Done"}
var priorities = []string{"Low", "Medium", "High"}
var pointScale = []int64{1, 2, 3, 5, 8}

func main() {
	baseURL := os.Getenv("SEED_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := &http.Client{Timeout: timeout}

	project, err := createProject(client, baseURL)
	if err != nil {
		log.Fatalf("create project: %v", err)
	}
	log.Printf("created project %q (id=%v)", project["name"], project["id"])

	sprints, err := createSprints(client, baseURL, project)
	if err != nil {
		log.Fatalf("create sprints: %v", err)
	}

	total := 0
	for _, sprint := range sprints {
		n, err := createTasks(client, baseURL, project, sprint)
		total += n
		if err != nil {
			// Earlier tasks stay committed; keep seeding the rest.
			log.Printf("sprint %v: %v", sprint["id"], err)
		}
	}

	log.Printf("done: 1 project, %d sprints, %d tasks", len(sprints), total)
}

func createProject(client *http.Client, baseURL string) (map[string]any, error) {
	today := time.Now().UTC()
	return post(client, baseURL+"/projects", map[string]any{
		"name":        "Demo Project",
		"description": "A demo project exercising the Agile Mini features",
		"status":      "Active",
		"start_date":  today.Format("2006-01-02"),
		"end_date":    today.AddDate(0, 0, 90).Format("2006-01-02"),
	})
}

func createSprints(client *http.Client, baseURL string, project map[string]any) ([]map[string]any, error) {
	today := time.Now().UTC()

	var out []map[string]any
	for i := 0; i < 3; i++ {
		start := today.AddDate(0, 0, i*14)
		end := start.AddDate(0, 0, 13)

		status := "Planned"
		if i == 0 {
			status = "Active"
		}

		sprint, err := post(client, baseURL+"/sprints", map[string]any{
			"name":       fmt.Sprintf("Sprint %d", i+1),
			"start_date": start.Format("2006-01-02"),
			"end_date":   end.Format("2006-01-02"),
			"status":     status,
			"project_id": project["id"],
		})
		if err != nil {
			return out, err
		}
		log.Printf("created sprint %q (id=%v)", sprint["name"], sprint["id"])
		out = append(out, sprint)
	}
	return out, nil
}

func createTasks(client *http.Client, baseURL string, project, sprint map[string]any) (int, error) {
	sprintStart, err := time.Parse(time.RFC3339, sprint["start_date"].(string))
	if err != nil {
		return 0, fmt.Errorf("parse sprint start: %w", err)
	}

	created := 0
	for i := 0; i < 5; i++ {
		status := statuses[rand.Intn(len(statuses))]

		payload := map[string]any{
			"title":       fmt.Sprintf("Task %d of %v", i+1, sprint["name"]),
			"description": fmt.Sprintf("Demo task for %v", sprint["name"]),
			"status":      status,
			"priority":    priorities[rand.Intn(len(priorities))],
			"points":      pointScale[rand.Intn(len(pointScale))],
			"project":     fmt.Sprintf("%v", project["name"]),
			"sprint_id":   sprint["id"],
		}

		// Stay inside the sprint window: create-time containment is enforced.
		if status == "Doing" || status == "Done" {
			payload["started_at"] = sprintStart.Add(time.Duration(1+rand.Intn(48)) * time.Hour).Format(time.RFC3339)
		}
		if status == "Done" {
			payload["completed_at"] = sprintStart.Add(time.Duration(72+rand.Intn(48)) * time.Hour).Format(time.RFC3339)
		}

		task, err := post(client, baseURL+"/tasks", payload)
		if err != nil {
			return created, err
		}
		created++
		log.Printf("created task %q status=%v", task["title"], task["status"])
	}
	return created, nil
}

func post(client *http.Client, url string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s: status %d: %s", url, resp.StatusCode, data)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", url, err)
	}
	return out, nil
}
