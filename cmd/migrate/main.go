/*
This project is the automatic timetable backend for the OpenSourceDUTH team. It builds weekly class timetables from teacher availability with the help of a generative model.
Timetable API Copyright (C) 2025 OpenSourceDUTH
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"context"
	"flag"
	"log"

	"TimetableAPI/internal/databases"
)

func main() {
	path := flag.String("path", databases.Timetable, "migration set to apply: timetable or auth")
	dbFile := flag.String("db", "", "path to the database file (default internal/databases/<path>.db)")
	flag.Parse()

	if *path != databases.Timetable && *path != databases.Auth {
		log.Fatalf("unknown migration set %q", *path)
	}
	if *dbFile == "" {
		*dbFile = "internal/databases/" + *path + ".db"
	}

	db, err := databases.OpenAndMigrate(context.Background(), *dbFile, *path)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	log.Println("Database migration complete for the:", *path, "path")
}
