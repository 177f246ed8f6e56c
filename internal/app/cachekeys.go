package app

import "strconv"

const citiesKey = "cities"

func propertyKey(slug string) string { return "property:" + slug }

func amenitiesKey(activeOnly bool) string { return "amenities:" + strconv.FormatBool(activeOnly) }
